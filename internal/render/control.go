package render

import "github.com/opsdeck/backoffice/internal/pagedef"

// ControlKind is the closed set of concrete form controls. Field schemas
// declare a FormItemType; ControlFor maps every declared type to exactly one
// kind, and anything unrecognized takes the explicit Text default.
type ControlKind string

const (
	ControlText       ControlKind = "text"
	ControlNumber     ControlKind = "number"
	ControlTextarea   ControlKind = "textarea"
	ControlRadio      ControlKind = "radio"
	ControlSelect     ControlKind = "select"
	ControlCheckbox   ControlKind = "checkbox"
	ControlSwitch     ControlKind = "switch"
	ControlDate       ControlKind = "date"
	ControlCascader   ControlKind = "cascader"
	ControlTreeSelect ControlKind = "tree-select"
	ControlUpload     ControlKind = "upload"
)

// Control is one bound input in a form plan.
type Control struct {
	Kind      ControlKind      `json:"kind"`
	DataIndex string           `json:"dataIndex"`
	Title     string           `json:"title"`
	Options   []pagedef.Option `json:"options,omitempty"`
	Rules     []pagedef.Rule   `json:"rules,omitempty"`
	Multiple  bool             `json:"multiple,omitempty"`
}

// ControlFor maps a field schema entry to its control. Unknown or absent
// form item types degrade to a plain text input; a schema entry never fails
// to produce a control.
func ControlFor(f pagedef.FieldSchema) Control {
	c := Control{
		DataIndex: f.DataIndex,
		Title:     f.Title,
		Options:   f.Options,
		Rules:     f.Rules,
		Multiple:  f.Multiple,
	}
	switch f.FormItemType {
	case pagedef.ItemRadio:
		c.Kind = ControlRadio
	case pagedef.ItemSelect:
		c.Kind = ControlSelect
	case pagedef.ItemInput:
		c.Kind = ControlText
	case pagedef.ItemInputNumber:
		c.Kind = ControlNumber
	case pagedef.ItemTextarea:
		c.Kind = ControlTextarea
	case pagedef.ItemDatePicker:
		c.Kind = ControlDate
	case pagedef.ItemCascader:
		c.Kind = ControlCascader
	case pagedef.ItemCheckbox:
		c.Kind = ControlCheckbox
	case pagedef.ItemTreeSelect:
		c.Kind = ControlTreeSelect
	case pagedef.ItemUploadImage:
		c.Kind = ControlUpload
	case pagedef.ItemSwitch:
		c.Kind = ControlSwitch
	default:
		c.Kind = ControlText
	}
	return c
}
