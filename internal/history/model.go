package history

import (
	"time"

	"github.com/google/uuid"

	"smartmail-backend/internal/email"
)

// Record is one saved generation. Records are never edited, only deleted.
type Record struct {
	ID            string
	OriginalText  string
	GeneratedText string
	Tone          email.Tone
	Mode          email.Mode
	Provider      string
	CreatedAt     time.Time
}

// NewRecord builds a record for a generated result with a fresh id.
func NewRecord(req email.Request, result email.Result) Record {
	created := result.Timestamp
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return Record{
		ID:            uuid.NewString(),
		OriginalText:  req.SourceText,
		GeneratedText: result.GeneratedText,
		Tone:          req.Tone,
		Mode:          req.Mode,
		Provider:      result.Provider,
		CreatedAt:     created.UTC(),
	}
}
