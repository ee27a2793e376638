package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/perechat/internal"
)

// ErrNotFound is returned when an exchange id is not in the history.
var ErrNotFound = errors.New("exchange not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		request TEXT NOT NULL,
		request_key TEXT NOT NULL DEFAULT '',
		echo TEXT,
		final_text TEXT NOT NULL,
		provider TEXT,
		model TEXT,
		working_lang TEXT,
		user_lang TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exchange_calls (
		exchange_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		stage TEXT NOT NULL,
		prompt TEXT NOT NULL,
		output TEXT NOT NULL,
		latency_ms INTEGER,
		PRIMARY KEY (exchange_id, seq),
		FOREIGN KEY (exchange_id) REFERENCES exchanges(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveExchange stores ex and its calls in one transaction. An empty ID is
// filled with a new UUID, a zero Timestamp with the current time; the ID used
// is returned. The request is stored verbatim next to a normalized copy used
// only for searching.
func (s *Store) SaveExchange(ctx context.Context, ex internal.Exchange) (string, error) {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exchanges (id, request, request_key, echo, final_text, provider, model, working_lang, user_lang, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Request, normalizeText(ex.Request), ex.Echo, ex.FinalText, ex.Provider, ex.Model, ex.WorkingLanguage, ex.UserLanguage, ex.Timestamp)
	if err != nil {
		return "", fmt.Errorf("failed to save exchange: %w", err)
	}

	for _, c := range ex.Calls {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO exchange_calls (exchange_id, seq, stage, prompt, output, latency_ms) VALUES (?, ?, ?, ?, ?, ?)`,
			ex.ID, c.Seq, c.Stage, c.Prompt, c.Output, c.LatencyMs)
		if err != nil {
			return "", fmt.Errorf("failed to save call %d: %w", c.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return ex.ID, nil
}

const exchangeColumns = `id, request, echo, final_text, provider, model, working_lang, user_lang, created_at`

// GetExchange returns the exchange with its calls in order. A unique id
// prefix is accepted in place of the full id; it is compared literally.
func (s *Store) GetExchange(ctx context.Context, id string) (*internal.Exchange, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+exchangeColumns+` FROM exchanges WHERE substr(id, 1, length(?)) = ? LIMIT 2`,
		id, id)
	if err != nil {
		return nil, err
	}
	found, err := scanExchanges(rows)
	if err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 2:
		return nil, fmt.Errorf("ambiguous exchange id prefix: %s", id)
	}
	ex := found[0]

	calls, err := s.db.QueryContext(ctx,
		`SELECT seq, stage, prompt, output, latency_ms FROM exchange_calls WHERE exchange_id = ? ORDER BY seq`,
		ex.ID)
	if err != nil {
		return nil, err
	}
	defer calls.Close()

	for calls.Next() {
		var c internal.ExchangeCall
		if err := calls.Scan(&c.Seq, &c.Stage, &c.Prompt, &c.Output, &c.LatencyMs); err != nil {
			return nil, err
		}
		ex.Calls = append(ex.Calls, c)
	}
	return &ex, calls.Err()
}

// ListExchanges returns exchanges newest first, without their calls. limit
// ≤ 0 returns everything.
func (s *Store) ListExchanges(ctx context.Context, limit int) ([]internal.Exchange, error) {
	return s.SearchExchanges(ctx, "", limit)
}

// SearchExchanges is ListExchanges restricted to requests containing text.
// Both sides are trimmed and NFC-normalized before comparing, so composed and
// decomposed Hangul match each other.
func (s *Store) SearchExchanges(ctx context.Context, text string, limit int) ([]internal.Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM exchanges`
	var args []interface{}
	if key := normalizeText(text); key != "" {
		query += ` WHERE instr(request_key, ?) > 0`
		args = append(args, key)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanExchanges(rows)
}

func scanExchanges(rows *sql.Rows) ([]internal.Exchange, error) {
	defer rows.Close()

	var results []internal.Exchange
	for rows.Next() {
		var ex internal.Exchange
		if err := rows.Scan(&ex.ID, &ex.Request, &ex.Echo, &ex.FinalText, &ex.Provider, &ex.Model, &ex.WorkingLanguage, &ex.UserLanguage, &ex.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, ex)
	}
	return results, rows.Err()
}

// DeleteExchange permanently removes an exchange and its calls.
func (s *Store) DeleteExchange(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM exchanges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exchange_calls WHERE exchange_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearExchanges removes the whole history and returns how many exchanges
// were deleted.
func (s *Store) ClearExchanges(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exchange_calls`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM exchanges`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// HistoryStats summarises the stored history.
type HistoryStats struct {
	TotalExchanges int
	TotalCalls     int
	AvgLatencyMs   float64
	ByProvider     map[string]int
}

func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{ByProvider: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM exchanges),
			(SELECT COUNT(*) FROM exchange_calls),
			(SELECT COALESCE(AVG(latency_ms), 0) FROM exchange_calls)`).Scan(
		&stats.TotalExchanges,
		&stats.TotalCalls,
		&stats.AvgLatencyMs,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(provider, ''), COUNT(*) FROM exchanges GROUP BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var n int
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, err
		}
		stats.ByProvider[provider] = n
	}
	return stats, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC so that the same
// Hangul typed through different input methods produces the same search key.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
