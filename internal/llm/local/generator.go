// Package local produces emails from fixed per-tone phrasing. It needs no
// network and is the last layer of the provider chain.
package local

import (
	"context"
	"strings"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm"
)

// Generator is a deterministic llm.Provider.
type Generator struct{}

// New returns a Generator.
func New() *Generator { return &Generator{} }

// Name identifies the generator in provider logs and results.
func (g *Generator) Name() string { return "local" }

// Complete composes an email from the prompt's source request. Unknown tones
// and modes fall back to the defaults.
func (g *Generator) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tone, err := email.ParseTone(prompt.Source.Tone)
	if err != nil {
		tone = email.DefaultTone
	}
	mode, err := email.ParseMode(prompt.Source.Mode)
	if err != nil {
		mode = email.DefaultMode
	}
	text := prompt.Source.Text
	if strings.TrimSpace(text) == "" {
		text = prompt.User
	}
	return Compose(text, tone, mode), nil
}

// Compose builds the complete email for text in the given tone and mode.
func Compose(text string, tone email.Tone, mode email.Mode) string {
	st := styleFor(tone)

	var body []string
	if mode == email.ModeWrite {
		body = writeBody(text, tone, st)
	} else {
		body = rewriteBody(text, tone, st)
	}

	parts := []string{st.greeting}
	parts = append(parts, body...)
	parts = append(parts, st.closing+"\n"+signature)
	out := strings.Join(parts, "\n\n")
	if !tone.Informal() {
		out = expandContractions(out)
	}
	return out
}

func rewriteBody(text string, tone email.Tone, st style) []string {
	paras := stripFrame(paragraphs(text))
	if len(paras) == 0 {
		paras = paragraphs(text)
	}

	var body []string
	if st.opener != "" {
		body = append(body, st.opener)
	}
	for _, p := range paras {
		if p = polish(p, tone); p != "" {
			body = append(body, p)
		}
	}
	if st.followUp != "" && (tone == email.TonePersuasive || tone == email.ToneApologetic || tone == email.ToneEmpathetic) {
		body = append(body, st.followUp)
	}
	return body
}

func writeBody(text string, tone email.Tone, st style) []string {
	desc := strings.Join(paragraphs(text), " ")
	desc = polish(desc, tone)
	desc = strings.TrimRight(desc, ".!")

	lead := st.intro + " " + lowerFirst(desc)
	if !strings.HasSuffix(lead, "?") {
		lead += "."
	}

	var body []string
	if st.opener != "" && tone != email.ToneFormal {
		body = append(body, st.opener)
	}
	body = append(body, lead)
	if st.followUp != "" {
		body = append(body, st.followUp)
	}
	return body
}

// polish cleans one paragraph for the target tone.
func polish(p string, tone email.Tone) string {
	p = replaceSlang(p)
	if !tone.Informal() {
		p = expandContractions(p)
	}
	if tone == email.ToneConcise {
		p = dropFiller(p)
	}
	return sentences(p)
}

var _ llm.Provider = (*Generator)(nil)
