package history

import "strings"

// Filter returns the records whose original text, generated text or tone
// label contains query, ignoring case. An empty query matches everything.
func Filter(records []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, q) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec Record, q string) bool {
	return strings.Contains(strings.ToLower(rec.OriginalText), q) ||
		strings.Contains(strings.ToLower(rec.GeneratedText), q) ||
		strings.Contains(strings.ToLower(rec.Tone.Label()), q)
}
