package mapping

import (
	"sort"

	"github.com/fyrsmithlabs/acrd/internal/issue"
)

// Grouped is the result of mapping a document's findings onto criteria.
type Grouped struct {
	// ByCriterion holds every finding attributed to each criterion id.
	ByCriterion map[string][]issue.Issue

	// Unmapped holds findings that matched no criterion. They are kept so
	// auditors see complete issue counts; dropping them would misstate
	// audit coverage.
	Unmapped []issue.Issue

	// mapped counts findings placed in ByCriterion, each once, however
	// many criteria it was attributed to.
	mapped int
}

// CriterionIDs returns the matched criterion ids in sorted order.
func (g Grouped) CriterionIDs() []string {
	ids := make([]string, 0, len(g.ByCriterion))
	for id := range g.ByCriterion {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalIssues counts every finding, mapped or not. A finding attributed to
// several criteria still counts once.
func (g Grouped) TotalIssues() int {
	return g.mapped + len(g.Unmapped)
}

// Mapper groups findings by success criterion using a static rule table.
// Construction compiles nothing and the table is never mutated, so a Mapper
// is safe for concurrent use.
type Mapper struct {
	ruleCriteria map[string][]string
}

// NewMapper creates a mapper with the built-in rule table.
func NewMapper() *Mapper {
	return &Mapper{ruleCriteria: defaultRuleCriteria()}
}

// NewMapperWithRules creates a mapper with a custom rule table. Used by
// tests and by deployments that extend the scanner vocabulary.
func NewMapperWithRules(rules map[string][]string) *Mapper {
	return &Mapper{ruleCriteria: rules}
}

// CriteriaForRule returns the criterion ids a rule id maps to.
func (m *Mapper) CriteriaForRule(code string) []string {
	return m.ruleCriteria[code]
}

// MapIssues groups findings by every criterion they match. A finding
// matches via the rule table, via its explicit criterion tags, or both;
// duplicate attributions to the same criterion collapse. A finding that
// matches nothing lands in the Unmapped bucket.
func (m *Mapper) MapIssues(issues []issue.Issue) Grouped {
	grouped := Grouped{ByCriterion: make(map[string][]issue.Issue)}

	for _, iss := range issues {
		matched := make(map[string]struct{})
		for _, id := range m.ruleCriteria[iss.Code] {
			matched[id] = struct{}{}
		}
		for _, id := range iss.ExplicitCriteria {
			if id != "" {
				matched[id] = struct{}{}
			}
		}

		if len(matched) == 0 {
			grouped.Unmapped = append(grouped.Unmapped, iss)
			continue
		}
		grouped.mapped++
		for id := range matched {
			grouped.ByCriterion[id] = append(grouped.ByCriterion[id], iss)
		}
	}

	return grouped
}
