package render

import "github.com/opsdeck/backoffice/internal/pagedef"

// FormLayout carries the layout hints declared in the page settings.
type FormLayout struct {
	Columns    int    `json:"columns,omitempty"`
	FormLayout string `json:"formLayout,omitempty"`
	Divider    string `json:"divider,omitempty"`
}

// FormPlan is the renderable form for one page: ordered controls plus layout.
type FormPlan struct {
	Controls []Control  `json:"controls"`
	Layout   FormLayout `json:"layout"`
}

// BuildForm interprets the field schema sequence of a definition. Fields
// marked hideInForm are excluded; order is preserved.
func BuildForm(d *pagedef.PageDefinition) *FormPlan {
	plan := &FormPlan{
		Layout: FormLayout{
			Columns:    d.Settings.Schema.Columns,
			FormLayout: d.Settings.Schema.FormLayout,
			Divider:    d.Settings.Schema.Divider,
		},
	}
	for _, f := range d.Schema {
		if f.HideInForm {
			continue
		}
		plan.Controls = append(plan.Controls, ControlFor(f))
	}
	return plan
}

// TransformValues applies the two deterministic submit transforms to a value
// object and returns a new map:
//
//   - upload fields are flattened from their file-list representation to
//     resolved URLs: an ordered []string for multi-upload fields, the first
//     URL alone for single-upload fields;
//   - cascader fields collapse to the deepest selected value.
//
// Fields not present in the schema pass through untouched.
func TransformValues(schema []pagedef.FieldSchema, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	kinds := make(map[string]pagedef.FieldSchema, len(schema))
	for _, f := range schema {
		kinds[f.DataIndex] = f
	}
	for k, v := range values {
		f, ok := kinds[k]
		if !ok {
			out[k] = v
			continue
		}
		switch f.FormItemType {
		case pagedef.ItemUploadImage:
			out[k] = flattenUploads(v, f.Multiple)
		case pagedef.ItemCascader:
			out[k] = collapseCascader(v)
		default:
			out[k] = v
		}
	}
	return out
}

// flattenUploads resolves a file-list value to its URLs. Each entry is
// either an already-resolved URL string or an object carrying "url" directly
// or under "response" once the upload completed.
func flattenUploads(v any, multiple bool) any {
	entries, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok {
			if multiple {
				return []string{s}
			}
			return s
		}
		return v
	}
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if u := resolveURL(e); u != "" {
			urls = append(urls, u)
		}
	}
	if multiple {
		return urls
	}
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func resolveURL(entry any) string {
	switch e := entry.(type) {
	case string:
		return e
	case map[string]any:
		if u, ok := e["url"].(string); ok && u != "" {
			return u
		}
		if resp, ok := e["response"].(map[string]any); ok {
			if u, ok := resp["url"].(string); ok {
				return u
			}
		}
	}
	return ""
}

// collapseCascader reduces a hierarchical selection path to its deepest
// element. Non-slice values pass through.
func collapseCascader(v any) any {
	path, ok := v.([]any)
	if !ok || len(path) == 0 {
		return v
	}
	return path[len(path)-1]
}
