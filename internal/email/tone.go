package email

import "strings"

// Tone selects the stylistic instruction given to the generation step.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	TonePersuasive   Tone = "persuasive"
	ToneEmpathetic   Tone = "empathetic"
	ToneConcise      Tone = "concise"
	ToneApologetic   Tone = "apologetic"
)

// DefaultTone is used when a request omits the tone.
const DefaultTone = ToneProfessional

var tones = []Tone{
	ToneProfessional,
	ToneFormal,
	ToneCasual,
	ToneFriendly,
	TonePersuasive,
	ToneEmpathetic,
	ToneConcise,
	ToneApologetic,
}

// Tones returns the closed set of tones in display order.
func Tones() []Tone {
	out := make([]Tone, len(tones))
	copy(out, tones)
	return out
}

// ParseTone accepts any casing and surrounding whitespace.
func ParseTone(raw string) (Tone, error) {
	candidate := Tone(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range tones {
		if t == candidate {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "tone", Message: "unsupported tone " + quote(raw)}
}

// Valid reports whether t belongs to the closed set.
func (t Tone) Valid() bool {
	for _, candidate := range tones {
		if candidate == t {
			return true
		}
	}
	return false
}

// Informal tones allow contractions and relaxed greetings.
func (t Tone) Informal() bool {
	return t == ToneCasual || t == ToneFriendly
}

// Label is the capitalized display name.
func (t Tone) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Next cycles through the tones in display order.
func (t Tone) Next() Tone {
	for i, candidate := range tones {
		if candidate == t {
			return tones[(i+1)%len(tones)]
		}
	}
	return DefaultTone
}

func (t Tone) String() string { return string(t) }
