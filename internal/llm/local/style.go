package local

import "smartmail-backend/internal/email"

// style is the fixed wording a tone contributes around the body.
type style struct {
	greeting string
	opener   string
	intro    string
	followUp string
	closing  string
}

var styles = map[email.Tone]style{
	email.ToneProfessional: {
		greeting: "Hello,",
		opener:   "I hope this message finds you well.",
		intro:    "I am writing regarding the following:",
		followUp: "Please let me know if you have any questions.",
		closing:  "Best regards,",
	},
	email.ToneFormal: {
		greeting: "Dear Sir or Madam,",
		opener:   "I am writing to you regarding the following matter.",
		intro:    "I am writing to you regarding the following matter:",
		followUp: "I would be grateful for your response at your earliest convenience.",
		closing:  "Sincerely,",
	},
	email.ToneCasual: {
		greeting: "Hey there,",
		intro:    "Quick note about this:",
		followUp: "Let me know what you think!",
		closing:  "Cheers,",
	},
	email.ToneFriendly: {
		greeting: "Hi there,",
		opener:   "I hope you're having a great week!",
		intro:    "I wanted to reach out about this:",
		followUp: "Let me know if you'd like to chat about it!",
		closing:  "Warm wishes,",
	},
	email.TonePersuasive: {
		greeting: "Hello,",
		opener:   "I would like to share something I believe will be valuable for you.",
		intro:    "I would like to propose the following:",
		followUp: "I am confident this will benefit us both, and I look forward to your reply.",
		closing:  "Best regards,",
	},
	email.ToneEmpathetic: {
		greeting: "Hello,",
		opener:   "I hope you are doing well, and I understand this may be a busy time for you.",
		intro:    "I am reaching out, with care, about the following:",
		followUp: "Please take whatever time you need, and let me know how I can help.",
		closing:  "With warm regards,",
	},
	email.ToneConcise: {
		greeting: "Hi,",
		intro:    "Regarding:",
		closing:  "Thanks,",
	},
	email.ToneApologetic: {
		greeting: "Hello,",
		opener:   "I sincerely apologize for any inconvenience this may have caused.",
		intro:    "I am reaching out to apologize regarding the following:",
		followUp: "Thank you for your patience and understanding.",
		closing:  "With sincere apologies,",
	},
}

func styleFor(tone email.Tone) style {
	if s, ok := styles[tone]; ok {
		return s
	}
	return styles[email.DefaultTone]
}

// signature is the placeholder the sender replaces with their name.
const signature = "[Your Name]"
