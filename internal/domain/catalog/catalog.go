package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocery-orders/internal/domain/basket"
	"github.com/xenking/grocery-orders/internal/domain/offer"
)

// ErrNotFound is returned when a requested catalog item does not exist.
var ErrNotFound = errors.New("item not found")

// Item is a sellable catalog entry with its unit price and remaining stock.
type Item struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// Repository defines read and upsert operations for the persisted catalog.
type Repository interface {
	ListItems(ctx context.Context) ([]Item, error)
	ListOffers(ctx context.Context) ([]offer.Rule, error)
	UpsertItem(ctx context.Context, item Item) error
	UpsertOffer(ctx context.Context, rule offer.Rule) error
}

// Snapshot is an immutable, in-memory view of the catalog loaded once at
// startup and shared read-only across concurrent requests.
type Snapshot struct {
	items map[string]Item
}

// New builds a Snapshot from the given items.
func New(items []Item) *Snapshot {
	byID := make(map[string]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &Snapshot{items: byID}
}

// Lookup returns the catalog item for the given identifier.
func (s *Snapshot) Lookup(id string) (Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Len returns the number of items in the catalog.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// HasStock reports whether every known item in the tally can be fulfilled
// from the available stock. Identifiers absent from the catalog cannot be
// sold and are excluded from the comparison; they never trip the verdict on
// their own.
func (s *Snapshot) HasStock(t basket.Tally) bool {
	for _, id := range t.Items() {
		item, ok := s.items[id]
		if !ok {
			continue
		}
		if t.Count(id) > item.Stock {
			return false
		}
	}
	return true
}
