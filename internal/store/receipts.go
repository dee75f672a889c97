package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-scanner/internal/extract"
)

// Session is one persisted scan batch.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
	Processed int
	Failed    int
}

// ReceiptRepository persists extraction results per scan session.
type ReceiptRepository interface {
	SaveBatch(ctx context.Context, sessionID uuid.UUID, records []extract.Record) error
	ListSessions(ctx context.Context) ([]Session, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]extract.Record, error)
}

type receiptRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReceiptRepository(db *sql.DB, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, logger: logger}
}

// SaveBatch writes the session row and all its receipts in one transaction.
func (r *receiptRepository) SaveBatch(ctx context.Context, sessionID uuid.UUID, records []extract.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	failed := 0
	q, args, err := sq.Insert("scan_sessions").
		Columns("id", "started_at", "processed", "failed").
		Values(sessionID.String(), now, len(records), failed).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, rec := range records {
		var total sql.NullFloat64
		if rec.Total != nil {
			total = sql.NullFloat64{Float64: *rec.Total, Valid: true}
		}
		q, args, err := sq.Insert("receipts").
			Columns("id", "session_id", "filename", "vendor", "location", "scan_date", "inferred", "total", "currency", "created_at").
			Values(uuid.New().String(), sessionID.String(), rec.Filename, rec.Vendor, rec.Location, rec.Date, rec.Inferred, total, rec.Currency, now).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert receipt %s: %w", rec.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("store.batch.saved", "session_id", sessionID, "receipts", len(records))
	return nil
}

func (r *receiptRepository) ListSessions(ctx context.Context) ([]Session, error) {
	q, args, err := sq.Select("id", "started_at", "processed", "failed").
		From("scan_sessions").
		OrderBy("started_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Session
	for rows.Next() {
		var s Session
		var id string
		if err := rows.Scan(&id, &s.StartedAt, &s.Processed, &s.Failed); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session id %q: %w", id, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *receiptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]extract.Record, error) {
	q, args, err := sq.Select("filename", "vendor", "location", "scan_date", "inferred", "total", "currency").
		From("receipts").
		Where(sq.Eq{"session_id": sessionID.String()}).
		OrderBy("rowid").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []extract.Record
	for rows.Next() {
		var rec extract.Record
		var total sql.NullFloat64
		if err := rows.Scan(&rec.Filename, &rec.Vendor, &rec.Location, &rec.Date, &rec.Inferred, &total, &rec.Currency); err != nil {
			return nil, err
		}
		if total.Valid {
			v := total.Float64
			rec.Total = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
