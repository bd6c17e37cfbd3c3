package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/grocery-orders/internal/domain/basket"
	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
)

// Line is the priced breakdown for a single catalog item in a basket.
type Line struct {
	ItemID   string
	Quantity int
	Charged  int
	Cost     decimal.Decimal
}

// Result holds the total basket cost and its per-item breakdown. Lines cover
// catalog-known items only, in basket first-appearance order.
type Result struct {
	Total decimal.Decimal
	Lines []Line
}

// Engine prices tallied baskets against the catalog and the configured offer
// rules. It holds only read-only shared state and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Snapshot
	rules   offer.Rules
}

// NewEngine creates a pricing Engine over the given catalog snapshot and
// offer rules.
func NewEngine(c *catalog.Snapshot, rules offer.Rules) *Engine {
	return &Engine{catalog: c, rules: rules}
}

// Price computes the cost of the tallied basket. Identifiers unknown to the
// catalog contribute nothing to the total and produce no breakdown line.
// An empty tally prices to zero.
func (e *Engine) Price(t basket.Tally) Result {
	total := decimal.Zero
	var lines []Line

	for _, id := range t.Items() {
		item, ok := e.catalog.Lookup(id)
		if !ok {
			continue
		}

		qty := t.Count(id)
		charged := qty
		if rule, ok := e.rules.For(id); ok {
			charged = rule.Chargeable(qty)
		}

		cost := item.Price.Mul(decimal.NewFromInt(int64(charged)))
		total = total.Add(cost)
		lines = append(lines, Line{
			ItemID:   id,
			Quantity: qty,
			Charged:  charged,
			Cost:     cost,
		})
	}

	return Result{Total: total, Lines: lines}
}

// Amount renders a currency amount the way the storefront displays it: a
// leading dollar sign and minimal decimal digits, always at least one
// fractional digit. 1.10 renders as "$1.1", zero as "$0.0".
func Amount(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return "$" + s
}
