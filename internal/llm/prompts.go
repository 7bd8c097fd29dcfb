package llm

import (
	_ "embed"
	"strings"

	"smartmail-backend/internal/email"
)

var (
	//go:embed prompts/write.txt
	promptWrite string
	//go:embed prompts/rewrite.txt
	promptRewrite string
)

var toneGuidance = map[email.Tone]string{
	email.ToneProfessional: "Polished and businesslike. Clear structure, courteous wording, no slang.",
	email.ToneFormal:       "Formal register. Full sentences, no contractions, no colloquialisms, respectful salutation and sign-off.",
	email.ToneCasual:       "Relaxed and conversational. Contractions are fine, short sentences, light greeting and sign-off.",
	email.ToneFriendly:     "Warm and approachable. Personable phrasing and genuine enthusiasm while staying clear.",
	email.TonePersuasive:   "Confident and compelling. Lead with the benefit to the reader and end with a clear call to action.",
	email.ToneEmpathetic:   "Understanding and considerate. Acknowledge the reader's situation and feelings before making any request.",
	email.ToneConcise:      "Brief and direct. Remove filler and pleasantries, keep only what the reader needs, prefer short paragraphs.",
	email.ToneApologetic:   "Sincere and accountable. Acknowledge the issue, apologize once without excuses, and state what happens next.",
}

// ToneGuidance returns the instruction fragment for a tone.
func ToneGuidance(tone email.Tone) string {
	if g, ok := toneGuidance[tone]; ok {
		return g
	}
	return toneGuidance[email.DefaultTone]
}

// BuildPrompt creates the provider-neutral prompt for a validated request.
func BuildPrompt(req email.Request, params Params) Prompt {
	template := promptRewrite
	user := "Rewrite this email:\n\n" + req.SourceText
	if req.Mode == email.ModeWrite {
		template = promptWrite
		user = "Write an email based on this description:\n\n" + req.SourceText
	}

	system := strings.NewReplacer(
		"{{TONE_LABEL}}", req.Tone.Label(),
		"{{TONE_GUIDANCE}}", ToneGuidance(req.Tone),
		"{{TONE}}", string(req.Tone),
	).Replace(template)

	return Prompt{
		System: strings.TrimSpace(system),
		User:   user,
		Params: params,
		Source: Source{
			Text: req.SourceText,
			Tone: string(req.Tone),
			Mode: string(req.Mode),
		},
	}
}
