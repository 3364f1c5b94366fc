// Package main provides a CLI tool for creating the schema and seeding
// demo journal data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"vibooks/internal/core/id"
	"vibooks/internal/infrastructure/storage/postgres"
	"vibooks/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
	id          UUID PRIMARY KEY,
	entry_date  TIMESTAMPTZ NOT NULL,
	status      TEXT NOT NULL DEFAULT 'draft',
	approved    BOOLEAN NOT NULL DEFAULT FALSE,
	memo        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_date_status
	ON journal_entries (entry_date, status);

CREATE TABLE IF NOT EXISTS journal_lines (
	id           UUID PRIMARY KEY,
	entry_id     UUID NOT NULL REFERENCES journal_entries (id) ON DELETE CASCADE,
	account_code TEXT NOT NULL,
	debit        NUMERIC(18, 2) NOT NULL DEFAULT 0,
	credit       NUMERIC(18, 2) NOT NULL DEFAULT 0,
	CHECK (debit >= 0 AND credit >= 0),
	CHECK (debit = 0 OR credit = 0)
);

CREATE INDEX IF NOT EXISTS idx_journal_lines_entry ON journal_lines (entry_id);
CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON journal_lines (account_code);

CREATE TABLE IF NOT EXISTS period_locks (
	period         TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	version        BIGINT NOT NULL DEFAULT 1,
	locked_by      TEXT,
	locked_by_name TEXT,
	locked_at      TIMESTAMPTZ,
	unlocked_by    TEXT,
	unlocked_at    TIMESTAMPTZ,
	unlock_reason  TEXT,
	closed_by      TEXT,
	closed_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS period_lock_events (
	id               UUID PRIMARY KEY,
	period           TEXT NOT NULL,
	before_status    TEXT NOT NULL,
	after_status     TEXT NOT NULL,
	actor_id         TEXT NOT NULL DEFAULT '',
	actor_name       TEXT NOT NULL DEFAULT '',
	reason           TEXT NOT NULL DEFAULT '',
	payload          BYTEA,
	compression_algo TEXT NOT NULL DEFAULT 'none',
	occurred_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_period_lock_events_period
	ON period_lock_events (period, occurred_at);
`

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ready")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// entry is one balanced demo journal entry.
type entry struct {
	date  time.Time
	memo  string
	lines []line
}

type line struct {
	account string
	debit   float64
	credit  float64
}

// seedDemoData posts three months of typical small-trader activity:
// a capital contribution, stock purchases, sales with output VAT, payroll
// and a corporate income tax accrual with its payment.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries`).Scan(&count); err != nil {
		return fmt.Errorf("check existing entries: %w", err)
	}
	if count > 0 {
		log.Infow("journal already seeded", "entries", count)
		return nil
	}

	day := func(m time.Month, d int) time.Time {
		return time.Date(2025, m, d, 9, 0, 0, 0, time.UTC)
	}

	entries := []entry{
		{day(time.January, 2), "owner capital contribution", []line{
			{"1121", 500_000_000, 0},
			{"411", 0, 500_000_000},
		}},
		{day(time.January, 5), "initial stock purchase on credit", []line{
			{"156", 200_000_000, 0},
			{"1331", 16_000_000, 0},
			{"331", 0, 216_000_000},
		}},
		{day(time.January, 20), "cash sale of goods", []line{
			{"1121", 264_000_000, 0},
			{"511", 0, 240_000_000},
			{"3331", 0, 24_000_000},
		}},
		{day(time.January, 20), "cost of goods sold", []line{
			{"632", 150_000_000, 0},
			{"156", 0, 150_000_000},
		}},
		{day(time.January, 28), "payroll for january", []line{
			{"642", 40_000_000, 0},
			{"334", 0, 40_000_000},
		}},
		{day(time.February, 3), "supplier payment", []line{
			{"331", 216_000_000, 0},
			{"1121", 0, 216_000_000},
		}},
		{day(time.February, 10), "credit sale to customer", []line{
			{"131", 110_000_000, 0},
			{"511", 0, 100_000_000},
			{"3331", 0, 10_000_000},
		}},
		{day(time.February, 10), "cost of goods sold", []line{
			{"632", 60_000_000, 0},
			{"156", 0, 60_000_000},
		}},
		{day(time.February, 25), "payroll for february", []line{
			{"642", 40_000_000, 0},
			{"334", 0, 40_000_000},
		}},
		{day(time.March, 5), "customer settles invoice", []line{
			{"1121", 110_000_000, 0},
			{"131", 0, 110_000_000},
		}},
		{day(time.March, 15), "bank interest received", []line{
			{"1121", 1_200_000, 0},
			{"515", 0, 1_200_000},
		}},
		{day(time.March, 28), "payroll for march", []line{
			{"642", 40_000_000, 0},
			{"334", 0, 40_000_000},
		}},
		{day(time.March, 30), "corporate income tax accrual", []line{
			{"821", 14_240_000, 0},
			{"3334", 0, 14_240_000},
		}},
		{day(time.March, 31), "corporate income tax prepayment", []line{
			{"3334", 10_000_000, 0},
			{"1121", 0, 10_000_000},
		}},
	}

	for _, e := range entries {
		entryID := id.New()
		if _, err := pool.Exec(ctx, `
			INSERT INTO journal_entries (id, entry_date, status, approved, memo)
			VALUES ($1, $2, 'posted', true, $3)`,
			entryID, e.date, e.memo,
		); err != nil {
			return fmt.Errorf("insert entry %q: %w", e.memo, err)
		}
		for _, l := range e.lines {
			if _, err := pool.Exec(ctx, `
				INSERT INTO journal_lines (id, entry_id, account_code, debit, credit)
				VALUES ($1, $2, $3, $4, $5)`,
				id.New(), entryID, l.account, l.debit, l.credit,
			); err != nil {
				return fmt.Errorf("insert line %s: %w", l.account, err)
			}
		}
	}

	log.Infow("demo journal seeded", "entries", len(entries))
	return nil
}
