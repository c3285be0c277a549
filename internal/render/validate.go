package render

import (
	"fmt"
	"regexp"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

// FieldError is one validation failure, keyed by the schema dataIndex so a
// caller can scroll to the offending control.
type FieldError struct {
	DataIndex string `json:"dataIndex"`
	Message   string `json:"message"`
}

// ValidationResult aggregates per-field failures. Submission is allowed only
// when OK reports true.
type ValidationResult struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// OK reports whether the values passed every rule.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate checks values against the schema's rules. It is a pure function
// over its inputs: no rendering state is consulted and no network is
// touched. Hidden fields are not validated.
func Validate(schema []pagedef.FieldSchema, values map[string]any) ValidationResult {
	var res ValidationResult
	for _, f := range schema {
		if f.HideInForm || f.DataIndex == "" {
			continue
		}
		v, present := values[f.DataIndex]
		for _, rule := range f.Rules {
			if rule.Required && isEmpty(v, present) {
				res.Errors = append(res.Errors, FieldError{
					DataIndex: f.DataIndex,
					Message:   message(rule, fmt.Sprintf("%s is required", f.Title)),
				})
				continue
			}
			if rule.Pattern == "" || isEmpty(v, present) {
				continue
			}
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprint(v)
			}
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				// Broken pattern in a stored definition must not make the
				// field unsubmittable.
				continue
			}
			if !re.MatchString(s) {
				res.Errors = append(res.Errors, FieldError{
					DataIndex: f.DataIndex,
					Message:   message(rule, fmt.Sprintf("%s has an invalid format", f.Title)),
				})
			}
		}
	}
	return res
}

func message(r pagedef.Rule, fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

func isEmpty(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}
