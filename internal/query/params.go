// Package query models the ephemeral filter, sort and pagination state of
// one active list screen. The state round-trips into list requests as
// skip/limit/sort/order and is synchronized back only through total.
package query

import "strconv"

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Params is the query state of a single screen.
type Params struct {
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Sort     string            `json:"sort,omitempty"`
	Order    string            `json:"order,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	Total    int               `json:"total"`
}

// Defaults returns the initial state for a page with the declared default
// sort field and direction.
func Defaults(sort, order string, pageSize int) Params {
	if pageSize <= 0 {
		pageSize = 20
	}
	if order == "" {
		order = OrderDesc
	}
	return Params{Page: 1, PageSize: pageSize, Sort: sort, Order: order}
}

// Skip returns the record offset for the current page.
func (p Params) Skip() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.PageSize
}

// SetSort updates the sort state. Re-selecting the current field toggles the
// direction; switching to a different field resets the direction to desc.
func (p *Params) SetSort(field string) {
	if field == p.Sort {
		if p.Order == OrderAsc {
			p.Order = OrderDesc
		} else {
			p.Order = OrderAsc
		}
		return
	}
	p.Sort = field
	p.Order = OrderDesc
}

// SetFilter stores a free-text filter value and resets to the first page so
// the new result set starts from the top.
func (p *Params) SetFilter(key, value string) {
	if p.Filters == nil {
		p.Filters = map[string]string{}
	}
	if value == "" {
		delete(p.Filters, key)
	} else {
		p.Filters[key] = value
	}
	p.Page = 1
}

// Values flattens the state into request parameters. Skip and limit are
// passed verbatim; filters are merged in last so they cannot shadow the
// pagination keys accidentally left in the filter map.
func (p Params) Values() map[string]string {
	out := map[string]string{
		"skip":  strconv.Itoa(p.Skip()),
		"limit": strconv.Itoa(p.PageSize),
	}
	if p.Sort != "" {
		out["sort"] = p.Sort
		out["order"] = p.Order
	}
	for k, v := range p.Filters {
		if k == "skip" || k == "limit" || k == "sort" || k == "order" {
			continue
		}
		out[k] = v
	}
	return out
}
