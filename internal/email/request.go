package email

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinTextLength = 10
	MaxTextLength = 5000
)

// Request is a validated generation request. Build it with NewRequest so that
// out-of-range input never reaches a transport or provider.
type Request struct {
	SourceText string
	Tone       Tone
	Mode       Mode
	Persist    bool
}

// NewRequest validates and normalizes the inputs. SourceText is stored trimmed.
func NewRequest(text string, tone Tone, mode Mode, persist bool) (Request, error) {
	trimmed, err := ValidateText(text)
	if err != nil {
		return Request{}, err
	}
	parsedTone, err := ParseTone(string(tone))
	if err != nil {
		return Request{}, err
	}
	parsedMode, err := ParseMode(string(mode))
	if err != nil {
		return Request{}, err
	}
	return Request{
		SourceText: trimmed,
		Tone:       parsedTone,
		Mode:       parsedMode,
		Persist:    persist,
	}, nil
}

// ValidateText checks the trimmed length bounds in characters and returns the
// trimmed text.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return "", &ValidationError{Field: "text", Message: "Email text is required"}
	case n < MinTextLength:
		return "", &ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("Email text is too short (minimum %d characters)", MinTextLength),
		}
	case n > MaxTextLength:
		return "", &ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("Email text is too long (maximum %d characters)", MaxTextLength),
		}
	}
	return trimmed, nil
}

// Validate re-checks a Request built by hand.
func (r Request) Validate() error {
	_, err := NewRequest(r.SourceText, r.Tone, r.Mode, r.Persist)
	return err
}
