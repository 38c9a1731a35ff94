package rollup

import "strings"

// Classification tags.
const (
	TagFixed      = "fixed"
	TagInvestment = "investment"
)

// Classification maps transaction categories to tags through a
// versioned keyword table, so taxonomy changes are configuration edits
// rather than code edits.
type Classification struct {
	Version int                 `yaml:"version" json:"version"`
	Tags    map[string][]string `yaml:"tags" json:"tags"` // tag -> lowercase keywords
}

// DefaultClassification returns the built-in keyword table.
func DefaultClassification() Classification {
	return Classification{
		Version: 1,
		Tags: map[string][]string{
			TagFixed:      {"rent", "mortgage", "insurance", "subscription", "utilities", "loan"},
			TagInvestment: {"investment", "savings", "401k", "ira", "stocks", "crypto"},
		},
	}
}

// Matches reports whether category carries the given tag. Matching is a
// case-insensitive substring test against the tag's keywords.
func (c Classification) Matches(tag, category string) bool {
	lower := strings.ToLower(category)
	for _, kw := range c.Tags[tag] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
