package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
	"github.com/xenking/grocery-orders/internal/storage/postgres"
)

type itemJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Offer *struct {
		GroupSize int `json:"group_size"`
		FreeCount int `json:"free_count"`
	} `json:"offer"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedCatalog(ctx, postgres.NewCatalogRepository(pool), catalogFile)
}

func seedCatalog(ctx context.Context, repo *postgres.CatalogRepository, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var items []itemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, it := range items {
		if err := repo.UpsertItem(ctx, catalog.Item{
			ID:    it.ID,
			Name:  it.Name,
			Price: it.Price,
			Stock: it.Stock,
		}); err != nil {
			return errors.Wrapf(err, "upsert item %s", it.ID)
		}

		if it.Offer != nil {
			if err := repo.UpsertOffer(ctx, offer.Rule{
				ItemID:    it.ID,
				GroupSize: it.Offer.GroupSize,
				FreeCount: it.Offer.FreeCount,
			}); err != nil {
				return errors.Wrapf(err, "upsert offer %s", it.ID)
			}
		}

		slog.Info("upserted item", slog.String("id", it.ID), slog.String("name", it.Name), slog.Int("stock", it.Stock))
	}

	return nil
}
