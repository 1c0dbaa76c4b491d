package pgconsole

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) GetValue(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(ctx, `SELECT value FROM console_kv WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "select kv")
	}
	return v, true, nil
}

func (s *Storage) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO console_kv (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, key, value)
	return errors.Wrap(err, "upsert kv")
}

func (s *Storage) DeleteValue(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM console_kv WHERE key = $1`, key)
	return errors.Wrap(err, "delete kv")
}
