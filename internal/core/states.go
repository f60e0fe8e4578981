package core

import "strings"

// DefaultPlaceOfSupply is used when a state code is not in the table.
const DefaultPlaceOfSupply = "Maharashtra"

// State is one entry of the GST state code table.
type State struct {
	Code string
	Name string
}

var states = []State{
	{Code: "27", Name: "Maharashtra"},
	{Code: "07", Name: "Delhi"},
	{Code: "29", Name: "Karnataka"},
	{Code: "33", Name: "Tamil Nadu"},
	{Code: "09", Name: "Uttar Pradesh"},
	{Code: "19", Name: "West Bengal"},
}

// States returns the state table in display order.
func States() []State {
	return append([]State(nil), states...)
}

// StateName looks up a state code.
func StateName(code string) (string, bool) {
	code = strings.TrimSpace(code)
	for _, s := range states {
		if s.Code == code {
			return s.Name, true
		}
	}
	return "", false
}

// PlaceOfSupply resolves the customer's state, falling back to the
// business's own state and then to DefaultPlaceOfSupply.
func PlaceOfSupply(customerState, businessState string) string {
	code := strings.TrimSpace(customerState)
	if code == "" {
		code = businessState
	}
	if name, ok := StateName(code); ok {
		return name
	}
	return DefaultPlaceOfSupply
}
