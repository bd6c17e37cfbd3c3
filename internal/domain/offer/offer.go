package offer

// Rule grants FreeCount free units for every complete group of GroupSize
// units of a single item. Incomplete groups earn nothing.
type Rule struct {
	ItemID    string
	GroupSize int
	FreeCount int
}

// Chargeable returns how many of qty units are actually charged under the
// rule.
func (r Rule) Chargeable(qty int) int {
	if qty <= 0 || r.GroupSize <= 0 {
		return qty
	}
	return qty - r.FreeCount*(qty/r.GroupSize)
}

// Rules is an immutable set of offer rules keyed by item identifier.
// At most one rule applies per item; it is safe for concurrent reads.
type Rules struct {
	byItem map[string]Rule
}

// NewRules builds a rule set from the given rules. A later rule for the same
// item replaces an earlier one.
func NewRules(rules []Rule) Rules {
	byItem := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byItem[r.ItemID] = r
	}
	return Rules{byItem: byItem}
}

// For returns the rule configured for the given item, if any.
func (r Rules) For(itemID string) (Rule, bool) {
	rule, ok := r.byItem[itemID]
	return rule, ok
}

// Len returns the number of configured rules.
func (r Rules) Len() int {
	return len(r.byItem)
}
