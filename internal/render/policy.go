package render

import (
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/render/controlpolicy"
)

var kindsByName = map[string]ControlKind{
	"text":        ControlText,
	"number":      ControlNumber,
	"textarea":    ControlTextarea,
	"radio":       ControlRadio,
	"select":      ControlSelect,
	"checkbox":    ControlCheckbox,
	"switch":      ControlSwitch,
	"date":        ControlDate,
	"cascader":    ControlCascader,
	"tree-select": ControlTreeSelect,
	"upload":      ControlUpload,
}

// BuildFormWithPolicy behaves like BuildForm, but fields whose formItemType
// is absent or outside the closed set are resolved through the control
// policy instead of falling straight to the text input. A policy answer
// that is not a known control kind still lands on text.
func BuildFormWithPolicy(d *pagedef.PageDefinition, pol *controlpolicy.Policy) *FormPlan {
	plan := BuildForm(d)
	if pol == nil {
		return plan
	}
	byIndex := make(map[string]pagedef.FieldSchema, len(d.Schema))
	for _, f := range d.Schema {
		byIndex[f.DataIndex] = f
	}
	for i, c := range plan.Controls {
		f := byIndex[c.DataIndex]
		if f.FormItemType.Known() {
			continue
		}
		name := pol.Resolve(controlpolicy.FieldCtx{
			DataIndex:    f.DataIndex,
			HasOptions:   len(f.Options) > 0,
			Hierarchical: hierarchical(f.Options),
		})
		if kind, ok := kindsByName[name]; ok {
			plan.Controls[i].Kind = kind
		}
	}
	return plan
}

func hierarchical(opts []pagedef.Option) bool {
	for _, o := range opts {
		if len(o.Children) > 0 {
			return true
		}
	}
	return false
}
