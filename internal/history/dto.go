package history

import (
	"time"

	"smartmail-backend/internal/email"
)

// RecordDTO is the wire form of a Record.
type RecordDTO struct {
	ID            string `json:"id"`
	OriginalText  string `json:"original_text"`
	GeneratedText string `json:"generated_text"`
	Tone          string `json:"tone"`
	ToneLabel     string `json:"tone_label"`
	Mode          string `json:"mode"`
	Provider      string `json:"provider,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type listResponse struct {
	Success bool        `json:"success"`
	Records []RecordDTO `json:"records"`
	Count   int         `json:"count"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type clearResponse struct {
	Success bool   `json:"success"`
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}

// ToDTO converts a record for the wire.
func ToDTO(rec Record) RecordDTO {
	return RecordDTO{
		ID:            rec.ID,
		OriginalText:  rec.OriginalText,
		GeneratedText: rec.GeneratedText,
		Tone:          string(rec.Tone),
		ToneLabel:     rec.Tone.Label(),
		Mode:          string(rec.Mode),
		Provider:      rec.Provider,
		CreatedAt:     rec.CreatedAt.UTC().Format(email.TimestampLayout),
	}
}

// FromDTO converts a wire record back. Unparseable timestamps become zero.
func FromDTO(dto RecordDTO) Record {
	created, _ := time.Parse(email.TimestampLayout, dto.CreatedAt)
	return Record{
		ID:            dto.ID,
		OriginalText:  dto.OriginalText,
		GeneratedText: dto.GeneratedText,
		Tone:          email.Tone(dto.Tone),
		Mode:          email.Mode(dto.Mode),
		Provider:      dto.Provider,
		CreatedAt:     created,
	}
}
