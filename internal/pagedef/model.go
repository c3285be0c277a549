package pagedef

import "time"

// FormItemType identifies the control a field renders as. The set is closed;
// anything outside it degrades to a plain text input at render time.
type FormItemType string

const (
	ItemRadio       FormItemType = "RADIO"
	ItemSelect      FormItemType = "SELECT"
	ItemInput       FormItemType = "INPUT"
	ItemInputNumber FormItemType = "INPUT_NUMBER"
	ItemTextarea    FormItemType = "TEXTAREA"
	ItemDatePicker  FormItemType = "DATE_PICKER"
	ItemCascader    FormItemType = "CASCADER"
	ItemCheckbox    FormItemType = "CHECKBOX"
	ItemTreeSelect  FormItemType = "TREE_SELECT"
	ItemUploadImage FormItemType = "UPLOAD_IMAGE"
	ItemSwitch      FormItemType = "SWITCH"
)

// Known reports whether t is part of the closed control set.
func (t FormItemType) Known() bool {
	switch t {
	case ItemRadio, ItemSelect, ItemInput, ItemInputNumber, ItemTextarea,
		ItemDatePicker, ItemCascader, ItemCheckbox, ItemTreeSelect,
		ItemUploadImage, ItemSwitch:
		return true
	}
	return false
}

// Option is one selectable choice. Children makes the option hierarchical for
// CASCADER and TREE_SELECT controls.
type Option struct {
	Name     string   `json:"name"`
	Value    any      `json:"value"`
	Disabled bool     `json:"disabled,omitempty"`
	Children []Option `json:"children,omitempty"`
}

// Rule is a client-checkable validation constraint on a single field.
type Rule struct {
	Required bool   `json:"required,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Message  string `json:"message,omitempty"`
}

// FieldSchema describes one form field of a page.
type FieldSchema struct {
	DataIndex    string       `json:"dataIndex"`
	Title        string       `json:"title"`
	FormItemType FormItemType `json:"formItemType,omitempty"`
	Options      []Option     `json:"options,omitempty"`
	HideInForm   bool         `json:"hideInForm,omitempty"`
	Multiple     bool         `json:"multiple,omitempty"`
	Rules        []Rule       `json:"rules,omitempty"`
}

// ColumnSchema describes one grid column of a page.
type ColumnSchema struct {
	Title     string            `json:"title"`
	DataIndex string            `json:"dataIndex"`
	Width     int               `json:"width,omitempty"`
	ValueType string            `json:"valueType,omitempty"`
	ValueEnum map[string]string `json:"valueEnum,omitempty"`
}

// APIDecl is a named backend call usable by the read path, form submission
// and buttons.
type APIDecl struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// ButtonDecl is an action button bound to a declared API.
type ButtonDecl struct {
	Label   string `json:"label"`
	APIName string `json:"apiName"`
	Confirm string `json:"confirm,omitempty"`
}

// SchemaSettings controls form layout.
type SchemaSettings struct {
	LayoutCtrl string `json:"layoutCtrl,omitempty"`
	Layout     string `json:"layout,omitempty"`
	Columns    int    `json:"columns,omitempty"`
	FormLayout string `json:"formLayout,omitempty"`
	Divider    string `json:"divider,omitempty"`
}

// GridSettings controls table layout and pagination.
type GridSettings struct {
	Layout       string `json:"layout,omitempty"`
	Paginated    bool   `json:"paginated"`
	PageSize     int    `json:"pageSize,omitempty"`
	DefaultSort  string `json:"defaultSort,omitempty"`
	DefaultOrder string `json:"defaultOrder,omitempty"`
}

// Settings groups the rendering configuration of a page.
type Settings struct {
	Schema SchemaSettings `json:"schema"`
	Grid   GridSettings   `json:"grid"`
}

// PageDefinition is the server-held metadata record describing one admin
// screen: its form schema, grid columns, API bindings and action buttons.
// Definitions are created and updated through the editor endpoints and read
// at render time; there is no delete operation.
type PageDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      []FieldSchema  `json:"schema"`
	Grid        []ColumnSchema `json:"grid"`
	APIs        []APIDecl      `json:"apis"`
	Read        string         `json:"read,omitempty"`
	Buttons     []ButtonDecl   `json:"buttons,omitempty"`
	Roles       []string       `json:"roles,omitempty"`
	Settings    Settings       `json:"settings"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// API returns the declaration named name, or false when absent.
func (d *PageDefinition) API(name string) (APIDecl, bool) {
	for _, a := range d.APIs {
		if a.Name == name {
			return a, true
		}
	}
	return APIDecl{}, false
}

// Button returns the button with the given label, or false when absent.
func (d *PageDefinition) Button(label string) (ButtonDecl, bool) {
	for _, b := range d.Buttons {
		if b.Label == label {
			return b, true
		}
	}
	return ButtonDecl{}, false
}
