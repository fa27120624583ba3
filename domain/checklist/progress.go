package checklist

import "math"

// Progress returns the canonical completion percentage for a templated
// checklist: the rounded share of items whose response carries a non-empty
// value. A response with an empty value does not count as answered. An
// empty template yields 0.
func Progress(t *Template, s *Store) int {
	total := t.ItemCount()
	if total == 0 {
		return 0
	}

	answered := 0
	for _, sec := range t.Sections {
		for _, it := range sec.Items {
			if r := s.Response(it.ID); r != nil && r.Value != "" {
				answered++
			}
		}
	}
	return int(math.Round(100 * float64(answered) / float64(total)))
}

// Predicate is one named completion criterion for a structured checklist
// variant, evaluated against a response store snapshot.
type Predicate struct {
	Name string
	Eval func(s *Store) bool
}

// PredicateProgress returns the share of predicates that hold, rounded to
// the nearest integer percent. It is the completion metric for structured
// (tabbed) variants and is reproducible bit-for-bit from the same store.
func PredicateProgress(preds []Predicate, s *Store) int {
	if len(preds) == 0 {
		return 0
	}
	met := 0
	for _, p := range preds {
		if p.Eval(s) {
			met++
		}
	}
	return int(math.Round(100 * float64(met) / float64(len(preds))))
}

// Answered reports whether an item has a response with a non-empty value.
func Answered(s *Store, itemID string) bool {
	r := s.Response(itemID)
	return r != nil && r.Value != ""
}

// StructuredPredicates builds the fixed predicate checklist used by the
// structured variant of a template: one "answered" predicate per required
// item plus one "all critical items answered" aggregate.
func StructuredPredicates(t *Template) []Predicate {
	var preds []Predicate
	var critical []string

	for _, sec := range t.Sections {
		for _, it := range sec.Items {
			if it.Flags.Critical {
				critical = append(critical, it.ID)
			}
			if !it.Flags.Required {
				continue
			}
			itemID := it.ID
			preds = append(preds, Predicate{
				Name: it.Question,
				Eval: func(s *Store) bool { return Answered(s, itemID) },
			})
		}
	}

	if len(critical) > 0 {
		preds = append(preds, Predicate{
			Name: "all critical items answered",
			Eval: func(s *Store) bool {
				for _, id := range critical {
					if !Answered(s, id) {
						return false
					}
				}
				return true
			},
		})
	}
	return preds
}
