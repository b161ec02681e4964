// Package pgstore persists session records in Postgres so they survive
// gateway restarts and are shared across replicas.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_record (
	sid        TEXT PRIMARY KEY,
	identity   JSONB NOT NULL,
	credential TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_record_expires_at_idx ON session_record (expires_at);
`

// Open connects to the configured database, waits for it to be ready and
// ensures the session table exists.
func Open(conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open(conf.Database.Engine, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := ping(db); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "ensuring session table")
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

type Store struct {
	db *sqlx.DB
}

var (
	_ session.Store  = (*Store)(nil)
	_ session.Purger = (*Store)(nil)
)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type recordRow struct {
	SID        string    `db:"sid"`
	Identity   []byte    `db:"identity"`
	Credential string    `db:"credential"`
	ExpiresAt  time.Time `db:"expires_at"`
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	identity, err := json.Marshal(rec.Identity)
	if err != nil {
		return errors.Wrap(err, "marshalling identity")
	}

	const q = `
INSERT INTO session_record (sid, identity, credential, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (sid) DO UPDATE
SET identity = EXCLUDED.identity, credential = EXCLUDED.credential, expires_at = EXCLUDED.expires_at`
	if _, err := s.db.ExecContext(ctx, q, rec.SID, identity, rec.Credential, rec.ExpiresAt.UTC()); err != nil {
		return errors.Wrap(err, "writing session record")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sid string) (session.Record, error) {
	var row recordRow
	const q = `SELECT sid, identity, credential, expires_at FROM session_record WHERE sid = $1`
	if err := s.db.GetContext(ctx, &row, q, sid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, session.ErrRecordNotFound
		}
		return session.Record{}, errors.Wrap(err, "reading session record")
	}

	rec := session.Record{
		SID:        row.SID,
		Credential: row.Credential,
		ExpiresAt:  row.ExpiresAt,
	}
	if err := json.Unmarshal(row.Identity, &rec.Identity); err != nil {
		return session.Record{}, errors.Wrap(err, "unmarshalling identity")
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_record WHERE sid = $1`, sid); err != nil {
		return errors.Wrap(err, "deleting session record")
	}
	return nil
}

func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_record WHERE expires_at < now()`)
	if err != nil {
		return 0, errors.Wrap(err, "purging expired session records")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting purged records")
	}
	return int(n), nil
}
