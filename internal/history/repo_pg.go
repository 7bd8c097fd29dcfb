package history

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert stores a record and returns its id.
func (r *PGRepo) Insert(ctx context.Context, record Record) (string, error) {
	if record.ID == "" {
		return "", ErrInvalidInput
	}
	const query = `
INSERT INTO email_history (
    id, original_text, generated_text, tone, mode, provider, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		record.ID,
		record.OriginalText,
		record.GeneratedText,
		string(record.Tone),
		string(record.Mode),
		record.Provider,
		record.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// ListAll lists records newest first.
func (r *PGRepo) ListAll(ctx context.Context, limit int) ([]Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM email_history
ORDER BY created_at DESC, seq DESC
LIMIT $1`
	return queryRecords(ctx, r.DB, query, clampLimit(limit))
}

// DeleteOne deletes a record by id.
func (r *PGRepo) DeleteOne(ctx context.Context, id string) error {
	const query = `DELETE FROM email_history WHERE id = $1`
	return deleteResult(r.DB.ExecContext(ctx, query, id))
}

// DeleteAll deletes every record.
func (r *PGRepo) DeleteAll(ctx context.Context) (int64, error) {
	return countResult(r.DB.ExecContext(ctx, `DELETE FROM email_history`))
}

var _ Repo = (*PGRepo)(nil)
