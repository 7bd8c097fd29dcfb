package history

import (
	"context"
	"database/sql"
)

// SQLiteRepo implements Repo on a local sqlite file.
type SQLiteRepo struct {
	DB *sql.DB
}

// Insert stores a record and returns its id.
func (r *SQLiteRepo) Insert(ctx context.Context, record Record) (string, error) {
	if record.ID == "" {
		return "", ErrInvalidInput
	}
	const query = `
INSERT INTO email_history (
    id, original_text, generated_text, tone, mode, provider, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		record.ID,
		record.OriginalText,
		record.GeneratedText,
		string(record.Tone),
		string(record.Mode),
		record.Provider,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// ListAll lists records newest first.
func (r *SQLiteRepo) ListAll(ctx context.Context, limit int) ([]Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM email_history
ORDER BY created_at DESC, seq DESC
LIMIT ?`
	return queryRecords(ctx, r.DB, query, clampLimit(limit))
}

// DeleteOne deletes a record by id.
func (r *SQLiteRepo) DeleteOne(ctx context.Context, id string) error {
	return deleteResult(r.DB.ExecContext(ctx, `DELETE FROM email_history WHERE id = ?`, id))
}

// DeleteAll deletes every record.
func (r *SQLiteRepo) DeleteAll(ctx context.Context) (int64, error) {
	return countResult(r.DB.ExecContext(ctx, `DELETE FROM email_history`))
}

var _ Repo = (*SQLiteRepo)(nil)
