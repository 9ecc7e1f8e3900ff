package versioning

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/acrd/internal/acr"
)

// maxRemarkDiffLen bounds remark values carried in changelog entries so a
// long narrative edit does not bloat the stored history.
const maxRemarkDiffLen = 100

// diffDocuments computes the field-level changes from prev to next. A nil
// prev means next is the first version and yields the single creation entry.
func diffDocuments(prev, next *acr.Document) []Change {
	if prev == nil {
		return []Change{{Field: "document", Previous: nil, New: "created"}}
	}

	var changes []Change
	add := func(field string, previous, newVal any) {
		changes = append(changes, Change{Field: field, Previous: previous, New: newVal})
	}

	if prev.Status != next.Status {
		add("status", string(prev.Status), string(next.Status))
	}
	if prev.Edition != next.Edition {
		add("edition", prev.Edition, next.Edition)
	}

	changes = append(changes, diffProductInfo(prev.ProductInfo, next.ProductInfo)...)
	changes = append(changes, diffCriteria(prev.Criteria, next.Criteria)...)
	return changes
}

func diffProductInfo(prev, next acr.ProductInfo) []Change {
	var changes []Change
	add := func(field string, previous, newVal any) {
		changes = append(changes, Change{
			Field:    "productInfo." + field,
			Previous: previous,
			New:      newVal,
		})
	}

	if prev.Name != next.Name {
		add("name", prev.Name, next.Name)
	}
	if prev.Version != next.Version {
		add("version", prev.Version, next.Version)
	}
	if prev.Description != next.Description {
		add("description", prev.Description, next.Description)
	}
	if prev.Vendor != next.Vendor {
		add("vendor", prev.Vendor, next.Vendor)
	}
	if !prev.EvaluatedAt.Equal(next.EvaluatedAt) {
		add("evaluatedAt", prev.EvaluatedAt, next.EvaluatedAt)
	}
	return changes
}

func diffCriteria(prev, next []acr.Criterion) []Change {
	prevByID := make(map[string]acr.Criterion, len(prev))
	for _, c := range prev {
		prevByID[c.ID] = c
	}
	nextByID := make(map[string]acr.Criterion, len(next))
	for _, c := range next {
		nextByID[c.ID] = c
	}

	ids := make([]string, 0, len(prevByID)+len(nextByID))
	seen := make(map[string]bool, len(prevByID))
	for id := range prevByID {
		ids = append(ids, id)
		seen[id] = true
	}
	for id := range nextByID {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var changes []Change
	for _, id := range ids {
		p, inPrev := prevByID[id]
		n, inNext := nextByID[id]

		switch {
		case !inPrev:
			changes = append(changes, Change{
				Field:    "criteria." + id,
				Previous: nil,
				New:      "added",
			})
		case !inNext:
			changes = append(changes, Change{
				Field:    "criteria." + id,
				Previous: "present",
				New:      "removed",
			})
		default:
			if p.ConformanceLevel != n.ConformanceLevel {
				changes = append(changes, Change{
					Field:    fmt.Sprintf("criteria.%s.conformanceLevel", id),
					Previous: string(p.ConformanceLevel),
					New:      string(n.ConformanceLevel),
				})
			}
			if p.Remarks != n.Remarks {
				changes = append(changes, Change{
					Field:    fmt.Sprintf("criteria.%s.remarks", id),
					Previous: truncateRemark(p.Remarks),
					New:      truncateRemark(n.Remarks),
				})
			}
		}
	}
	return changes
}

func truncateRemark(s string) string {
	if len(s) <= maxRemarkDiffLen {
		return s
	}
	// Back off to a rune boundary so the cut never produces invalid UTF-8.
	cut := maxRemarkDiffLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut]) + "..."
}

// summarize condenses a change list into the comparison summary.
func summarize(changes []Change) Summary {
	criteria := make(map[string]bool)
	statusChanged := false
	for _, c := range changes {
		if c.Field == "status" {
			statusChanged = true
		}
		if rest, ok := strings.CutPrefix(c.Field, "criteria."); ok {
			// Criterion ids themselves contain dots, so strip the known
			// sub-field suffixes rather than splitting on the first dot.
			id := strings.TrimSuffix(rest, ".conformanceLevel")
			id = strings.TrimSuffix(id, ".remarks")
			criteria[id] = true
		}
	}
	return Summary{
		FieldsChanged:   len(changes),
		CriteriaTouched: len(criteria),
		StatusChanged:   statusChanged,
	}
}
