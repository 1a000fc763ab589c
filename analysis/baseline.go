package analysis

import (
	"fmt"
	"sort"
)

// BaselineGroups maps a country to the group whose baseline mean it is
// normalised against. Countries sharing a group share a mean.
type BaselineGroups map[string]string

// DefaultBaselineGroups normalises England and Scotland independently.
func DefaultBaselineGroups() BaselineGroups {
	return BaselineGroups{
		"England":  "England",
		"Scotland": "Scotland",
	}
}

// Group returns the baseline group for country.
func (g BaselineGroups) Group(country string) (string, error) {
	group, ok := g[country]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	return group, nil
}

// Countries lists the configured countries in name order.
func (g BaselineGroups) Countries() []string {
	out := make([]string, 0, len(g))
	for c := range g {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
