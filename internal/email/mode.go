package email

import "strings"

// Mode decides whether source text is a topic to expand or a draft to transform.
type Mode string

const (
	ModeWrite   Mode = "write"
	ModeRewrite Mode = "rewrite"
)

// DefaultMode is used when a request omits the mode.
const DefaultMode = ModeRewrite

// ParseMode accepts any casing and surrounding whitespace.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeWrite:
		return ModeWrite, nil
	case ModeRewrite:
		return ModeRewrite, nil
	default:
		return "", &ValidationError{Field: "mode", Message: "unsupported mode " + quote(raw)}
	}
}

// Valid reports whether m is write or rewrite.
func (m Mode) Valid() bool {
	return m == ModeWrite || m == ModeRewrite
}

// Toggle flips between write and rewrite.
func (m Mode) Toggle() Mode {
	if m == ModeWrite {
		return ModeRewrite
	}
	return ModeWrite
}

func (m Mode) String() string { return string(m) }
