package storage

// sqlite.go: estado de las instancias, journal de mensajes y feeds del oráculo.
//
// Estrategia:
//   - `contract_state`: UNA fila por instancia (UPSERT). Solo se escribe al
//     aceptar un mensaje, en la misma transacción que su entrada de journal.
//   - `journal`: una fila por mensaje procesado, aceptado o rechazado.
//   - `data_feeds`: publicaciones del oráculo; la lectura devuelve la última
//     estrictamente anterior al mensaje que la pide.
//   - Timestamps como INTEGER (unix nanos) para comparar sin depender del
//     formato de texto del driver.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
-- Estado persistente, una fila por instancia
CREATE TABLE IF NOT EXISTS contract_state (
    instance      TEXT PRIMARY KEY,
    yes_asset     TEXT    NOT NULL DEFAULT '',
    no_asset      TEXT    NOT NULL DEFAULT '',
    total_backing INTEGER NOT NULL DEFAULT 0,
    yes_supply    INTEGER NOT NULL DEFAULT 0,
    no_supply     INTEGER NOT NULL DEFAULT 0,
    winner        TEXT    NOT NULL DEFAULT '',
    updated_at    INTEGER NOT NULL
);

-- Una fila por mensaje procesado
CREATE TABLE IF NOT EXISTS journal (
    id           TEXT PRIMARY KEY,
    seq          INTEGER NOT NULL,
    instance     TEXT    NOT NULL,
    message_id   TEXT    NOT NULL,
    sender       TEXT    NOT NULL DEFAULT '',
    kind         TEXT    NOT NULL,
    accepted     INTEGER NOT NULL,
    code         TEXT    NOT NULL DEFAULT '',
    reason       TEXT    NOT NULL DEFAULT '',
    winner       TEXT    NOT NULL DEFAULT '',
    effects      TEXT    NOT NULL DEFAULT '[]',
    processed_at INTEGER NOT NULL
);

-- Publicaciones del oráculo
CREATE TABLE IF NOT EXISTS data_feeds (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    oracle    TEXT    NOT NULL,
    feed_name TEXT    NOT NULL,
    value     TEXT    NOT NULL,
    posted_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_instance ON journal(instance, seq DESC);
CREATE INDEX IF NOT EXISTS idx_feeds_lookup     ON data_feeds(oracle, feed_name, posted_at DESC);
`

// SQLiteStorage implementa ports.StateStore, ports.FeedReader y
// ports.FeedRecorder usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además ":memory:" es por conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// LoadState devuelve el estado de la instancia, o el estado vacío si no existe.
func (s *SQLiteStorage) LoadState(ctx context.Context, instance string) (domain.ContractState, error) {
	var (
		st           domain.ContractState
		yes, no, win string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT yes_asset, no_asset, total_backing, yes_supply, no_supply, winner
		FROM contract_state WHERE instance = ?
	`, instance).Scan(&yes, &no, &st.TotalBacking, &st.YesSupply, &st.NoSupply, &win)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContractState{}, nil
	}
	if err != nil {
		return domain.ContractState{}, fmt.Errorf("storage.LoadState: %w", err)
	}
	st.YesAsset = domain.AssetID(yes)
	st.NoAsset = domain.AssetID(no)
	st.Winner = domain.Outcome(win)
	return st, nil
}

// Commit guarda estado y journal en una transacción: o entra el mensaje entero o nada.
func (s *SQLiteStorage) Commit(ctx context.Context, instance string, st domain.ContractState, resp domain.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Commit: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contract_state
			(instance, yes_asset, no_asset, total_backing, yes_supply, no_supply, winner, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance) DO UPDATE SET
			yes_asset     = excluded.yes_asset,
			no_asset      = excluded.no_asset,
			total_backing = excluded.total_backing,
			yes_supply    = excluded.yes_supply,
			no_supply     = excluded.no_supply,
			winner        = excluded.winner,
			updated_at    = excluded.updated_at
	`,
		instance, string(st.YesAsset), string(st.NoAsset),
		st.TotalBacking, st.YesSupply, st.NoSupply, string(st.Winner),
		time.Now().UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("storage.Commit: upsert state: %w", err)
	}

	if err := insertJournal(ctx, tx, instance, resp); err != nil {
		return fmt.Errorf("storage.Commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Commit: commit: %w", err)
	}
	return nil
}

// RecordRejection añade la respuesta rechazada al journal.
func (s *SQLiteStorage) RecordRejection(ctx context.Context, instance string, resp domain.Response) error {
	if err := insertJournal(ctx, s.db, instance, resp); err != nil {
		return fmt.Errorf("storage.RecordRejection: %w", err)
	}
	return nil
}

// Journal devuelve las últimas limit respuestas, la más reciente primero.
func (s *SQLiteStorage) Journal(ctx context.Context, instance string, limit int) ([]domain.Response, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, sender, kind, accepted, code, reason, winner, effects, processed_at
		FROM journal
		WHERE instance = ?
		ORDER BY seq DESC
		LIMIT ?
	`, instance, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Journal: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Response
	for rows.Next() {
		var (
			r                          domain.Response
			kind, code, winner, effect string
			accepted                   int
			processed                  int64
		)
		if err := rows.Scan(&r.MessageID, &r.Sender, &kind, &accepted, &code, &r.Reason, &winner, &effect, &processed); err != nil {
			return nil, fmt.Errorf("storage.Journal: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(effect), &r.Effects); err != nil {
			return nil, fmt.Errorf("storage.Journal: decode effects of %s: %w", r.MessageID, err)
		}
		r.Instance = instance
		r.Kind = domain.MessageKind(kind)
		r.Accepted = accepted == 1
		r.Code = domain.RejectCode(code)
		r.Winner = domain.Outcome(winner)
		r.ProcessedAt = time.Unix(0, processed).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// execer es lo común entre *sql.DB y *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertJournal(ctx context.Context, ex execer, instance string, resp domain.Response) error {
	effects := resp.Effects
	if effects == nil {
		effects = []domain.Effect{}
	}
	raw, err := json.Marshal(effects)
	if err != nil {
		return fmt.Errorf("encode effects: %w", err)
	}
	accepted := 0
	if resp.Accepted {
		accepted = 1
	}
	// seq mantiene el orden de llegada aunque dos mensajes compartan timestamp.
	_, err = ex.ExecContext(ctx, `
		INSERT INTO journal
			(id, seq, instance, message_id, sender, kind, accepted, code, reason, winner, effects, processed_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM journal), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(), instance, resp.MessageID, resp.Sender, string(resp.Kind), accepted,
		string(resp.Code), resp.Reason, string(resp.Winner), string(raw), resp.ProcessedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert journal %s: %w", resp.MessageID, err)
	}
	return nil
}
