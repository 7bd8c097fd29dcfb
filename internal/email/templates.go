package email

import "sort"

// Seed texts for write mode. Each is a description of the email to write.
var templates = map[string]string{
	"meeting":      "Request a meeting next week to discuss the current project status, open risks, and next steps. Ask which day and time works best for them.",
	"followup":     "Follow up on our previous conversation and check whether they have had a chance to review the proposal I sent. Offer to answer any questions.",
	"thankyou":     "Thank them for their help and support on the recent project. Mention that their contribution made a real difference to the outcome.",
	"introduction": "Introduce myself as the new point of contact for their account, briefly describe my role, and suggest a short call to get to know each other.",
}

// Template returns the seed text for a template name.
func Template(name string) (string, bool) {
	text, ok := templates[name]
	return text, ok
}

// TemplateNames lists the template names alphabetically.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
