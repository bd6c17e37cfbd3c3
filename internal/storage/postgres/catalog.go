package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListItems returns every catalog item ordered by ID.
func (r *CatalogRepository) ListItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, stock FROM items ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var item catalog.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Stock); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListOffers returns every configured offer rule ordered by item ID.
func (r *CatalogRepository) ListOffers(ctx context.Context) ([]offer.Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT item_id, group_size, free_count FROM offers ORDER BY item_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list offers")
	}
	defer rows.Close()

	var rules []offer.Rule
	for rows.Next() {
		var rule offer.Rule
		if err := rows.Scan(&rule.ItemID, &rule.GroupSize, &rule.FreeCount); err != nil {
			return nil, errors.Wrap(err, "scan offer")
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// UpsertItem inserts the item or updates its name, price, and stock.
func (r *CatalogRepository) UpsertItem(ctx context.Context, item catalog.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items (id, name, price, stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, stock = $4`,
		item.ID, item.Name, item.Price, item.Stock)
	if err != nil {
		return errors.Wrapf(err, "upsert item %s", item.ID)
	}
	return nil
}

// UpsertOffer inserts the offer rule or updates its group size and free count.
func (r *CatalogRepository) UpsertOffer(ctx context.Context, rule offer.Rule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO offers (item_id, group_size, free_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO UPDATE SET group_size = $2, free_count = $3`,
		rule.ItemID, rule.GroupSize, rule.FreeCount)
	if err != nil {
		return errors.Wrapf(err, "upsert offer %s", rule.ItemID)
	}
	return nil
}
