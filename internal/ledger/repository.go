package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coma-workspace/coma-workspace/internal/platform/db"
)

// repository is the Postgres adapter. Entries are insert-only; nothing in
// this type updates or deletes ledger rows.
type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, ts, date_key, type, amount, direction, channel, account_id, entity_id, reference_id, description, partner_id, partner_name, migrated`

func (r *repository) LoadEntries(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries ORDER BY ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e                                            Entry
		accountID, entityID, refID, partnerID, pname pgtype.Text
	)
	err := row.Scan(&e.ID, &e.Timestamp, &e.DateKey, &e.Type, &e.Amount, &e.Direction, &e.Channel,
		&accountID, &entityID, &refID, &e.Description, &partnerID, &pname, &e.Migrated)
	if err != nil {
		return Entry{}, err
	}
	e.AccountID = accountID.String
	e.EntityID = entityID.String
	e.ReferenceID = refID.String
	e.PartnerID = partnerID.String
	e.PartnerName = pname.String
	return e, nil
}

func (r *repository) InsertEntries(ctx context.Context, entries []Entry) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertEntriesTx(ctx, tx, entries)
	})
}

func insertEntriesTx(ctx context.Context, tx pgx.Tx, entries []Entry) error {
	for _, e := range entries {
		_, err := tx.Exec(ctx, `INSERT INTO ledger_entries (`+entryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			e.ID, e.Timestamp, e.DateKey, e.Type, e.Amount, e.Direction, e.Channel,
			nullStr(e.AccountID), nullStr(e.EntityID), nullStr(e.ReferenceID),
			e.Description, nullStr(e.PartnerID), nullStr(e.PartnerName), e.Migrated)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *repository) LoadLock(ctx context.Context) (*PeriodLock, error) {
	var lock PeriodLock
	var notes pgtype.Text
	err := r.db.QueryRow(ctx, `SELECT lock_id, locked_until, created_at, notes FROM period_locks LIMIT 1`).
		Scan(&lock.LockID, &lock.LockedUntil, &lock.CreatedAt, &notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	lock.Notes = notes.String
	return &lock, nil
}

// saveLockTx replaces the singleton lock row.
func saveLockTx(ctx context.Context, tx pgx.Tx, lock PeriodLock) error {
	if _, err := tx.Exec(ctx, `DELETE FROM period_locks`); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO period_locks (lock_id, locked_until, created_at, notes) VALUES ($1,$2,$3,$4)`,
		lock.LockID, lock.LockedUntil, lock.CreatedAt, nullStr(lock.Notes))
	return err
}

func (r *repository) DeleteLock(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM period_locks`)
	return err
}

func (r *repository) LoadPricing(ctx context.Context) (PricingConfig, bool, error) {
	var cfg PricingConfig
	err := r.db.QueryRow(ctx, `SELECT dev_percent, kwh_price, last_meter_reading FROM pricing_config WHERE id = 1`).
		Scan(&cfg.DevPercent, &cfg.ElectricityKwhPrice, &cfg.LastElectricityMeterReading)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PricingConfig{}, false, nil
		}
		return PricingConfig{}, false, err
	}
	return cfg, true, nil
}

func savePricingTx(ctx context.Context, tx pgx.Tx, cfg PricingConfig) error {
	_, err := tx.Exec(ctx, `INSERT INTO pricing_config (id, dev_percent, kwh_price, last_meter_reading)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET dev_percent = EXCLUDED.dev_percent, kwh_price = EXCLUDED.kwh_price, last_meter_reading = EXCLUDED.last_meter_reading`,
		cfg.DevPercent, cfg.ElectricityKwhPrice, cfg.LastElectricityMeterReading)
	return err
}

func insertSnapshotTx(ctx context.Context, tx pgx.Tx, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO inventory_snapshots (id, archive_id, period_start, period_end, created_at, payload)
VALUES ($1,$2,$3,$4,$5,$6)`,
		snap.ID, snap.ArchiveID, snap.PeriodStart, snap.PeriodEnd, snap.CreatedAt, payload)
	return err
}

func (r *repository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM inventory_snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var snaps []Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (r *repository) CountSnapshots(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_snapshots`).Scan(&count)
	return count, err
}

func (r *repository) Archive(ctx context.Context, entries []Entry, snap Snapshot, pricing PricingConfig, lock PeriodLock) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertEntriesTx(ctx, tx, entries); err != nil {
			return err
		}
		if err := insertSnapshotTx(ctx, tx, snap); err != nil {
			return err
		}
		if err := savePricingTx(ctx, tx, pricing); err != nil {
			return err
		}
		return saveLockTx(ctx, tx, lock)
	})
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
