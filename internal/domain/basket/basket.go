// Package basket reduces a submitted list of item identifiers to per-item
// quantities.
package basket

// Tally holds how many units of each item a basket requests. It remembers
// the order in which identifiers first appeared so downstream consumers can
// render baskets deterministically.
type Tally struct {
	counts map[string]int
	order  []string
}

// TallyOf counts the occurrences of each identifier in ids. Totals are
// multiset semantics: permutations of the same basket produce equal counts.
func TallyOf(ids []string) Tally {
	counts := make(map[string]int, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}
	return Tally{counts: counts, order: order}
}

// Count returns the requested quantity for the given identifier, zero when
// the identifier is not in the basket.
func (t Tally) Count(id string) int {
	return t.counts[id]
}

// Items returns the distinct identifiers in first-appearance order. The
// returned slice must not be modified.
func (t Tally) Items() []string {
	return t.order
}

// Empty reports whether the basket contained no items.
func (t Tally) Empty() bool {
	return len(t.counts) == 0
}
