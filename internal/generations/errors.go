package generations

import "errors"

var (
	// ErrGenerationFailed means no provider produced text.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrPersistFailed means the text was generated but could not be saved.
	ErrPersistFailed = errors.New("failed to save history")
)
