package pagedef

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// Warning is a non-blocking problem found in a definition. Saving a
// definition with warnings is allowed; the broken part fails at load time
// instead.
type Warning struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Validate inspects a definition and returns warnings. The read/apis
// mismatch is deliberately a warning rather than an error: the editor never
// blocked saving on it, and the data path reports it when the page loads.
func Validate(d *PageDefinition) []Warning {
	var ws []Warning
	if d.Read != "" {
		if _, ok := d.API(d.Read); !ok {
			ws = append(ws, Warning{
				Location: "read",
				Message:  fmt.Sprintf("read references api %q which is not declared in apis", d.Read),
			})
		}
	}
	for i, b := range d.Buttons {
		if b.APIName == "" {
			continue
		}
		if _, ok := d.API(b.APIName); !ok {
			ws = append(ws, Warning{
				Location: fmt.Sprintf("buttons[%d]", i),
				Message:  fmt.Sprintf("button %q references api %q which is not declared in apis", b.Label, b.APIName),
			})
		}
	}
	seen := map[string]int{}
	for i, f := range d.Schema {
		if f.DataIndex == "" {
			ws = append(ws, Warning{
				Location: fmt.Sprintf("schema[%d]", i),
				Message:  "field has no dataIndex and will not bind to a value",
			})
			continue
		}
		if j, dup := seen[f.DataIndex]; dup {
			ws = append(ws, Warning{
				Location: fmt.Sprintf("schema[%d]", i),
				Message:  fmt.Sprintf("dataIndex %q already used by schema[%d]", f.DataIndex, j),
			})
		}
		seen[f.DataIndex] = i
	}
	return ws
}

// Normalize rewrites editor input into canonical form: dataIndex keys become
// lowerCamelCase and API methods are upper-cased. Applied on create and
// update before persisting.
func Normalize(d *PageDefinition) {
	for i := range d.Schema {
		d.Schema[i].DataIndex = strcase.ToLowerCamel(d.Schema[i].DataIndex)
	}
	for i := range d.Grid {
		d.Grid[i].DataIndex = strcase.ToLowerCamel(d.Grid[i].DataIndex)
	}
	for i := range d.APIs {
		d.APIs[i].Method = strings.ToUpper(d.APIs[i].Method)
	}
}
