// Command seed-db runs migrations and seeds the discounts table, either
// from a JSON file or with a built-in starter set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/repository"
)

type discountJSON struct {
	Code        string          `json:"code"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MinItems    int             `json:"minItems"`
	Description string          `json:"description"`
	ValidFrom   *time.Time      `json:"validFrom"`
	ValidUntil  *time.Time      `json:"validUntil"`
	MaxUses     int             `json:"maxUses"`
}

func main() {
	var (
		databaseURL   string
		discountsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&discountsFile, "discounts-file", "", "path to discounts JSON file (optional)")
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

	if err := run(ctx, databaseURL, discountsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, discountsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewDiscountRepository(pool)

	rules, err := loadRules(discountsFile)
	if err != nil {
		return errors.Wrap(err, "load discount rules")
	}

	slog.Info("upserting discounts", slog.Int("count", len(rules)))

	for _, rule := range rules {
		if err := repo.Upsert(ctx, rule, true); err != nil {
			return errors.Wrapf(err, "upsert discount %s", rule.Code)
		}

		slog.Info("upserted discount",
			slog.String("code", rule.Code),
			slog.String("description", rule.Description),
		)
	}

	return nil
}

func loadRules(discountsFile string) ([]*discount.Rule, error) {
	if discountsFile == "" {
		return defaultRules(), nil
	}

	slog.Info("reading discounts file", slog.String("path", discountsFile))

	data, err := os.ReadFile(discountsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read discounts file")
	}

	var entries []discountJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parse discounts JSON")
	}

	rules := make([]*discount.Rule, len(entries))
	for i, e := range entries {
		rules[i] = &discount.Rule{
			Code:        e.Code,
			Type:        discount.Type(e.Type),
			Value:       e.Value,
			MinItems:    e.MinItems,
			Description: e.Description,
			ValidFrom:   e.ValidFrom,
			ValidUntil:  e.ValidUntil,
			MaxUses:     e.MaxUses,
		}
	}
	return rules, nil
}

func defaultRules() []*discount.Rule {
	return []*discount.Rule{
		{
			Code:        "WELCOME10",
			Type:        discount.TypePercentage,
			Value:       decimal.NewFromInt(10),
			Description: "Welcome: 10% off your first order",
		},
		{
			Code:        "SWEETDEAL",
			Type:        discount.TypePercentage,
			Value:       decimal.NewFromInt(15),
			MinItems:    3,
			Description: "15% off orders of 3 or more items",
		},
		{
			Code:        "FIVEOFF",
			Type:        discount.TypeFixed,
			Value:       decimal.NewFromInt(5),
			Description: "$5 off your order",
		},
	}
}
