package local

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reSpaces = regexp.MustCompile(`[ \t]+`)
	reBlank  = regexp.MustCompile(`\n\s*\n`)

	reGreetingLine   = regexp.MustCompile(`(?i)^(hey|hi|hello|dear|greetings|good (morning|afternoon|evening))(\s+[\w.]+){0,2}\s*[,!:]?$`)
	reGreetingPrefix = regexp.MustCompile(`(?i)^(hey|hi|hello|dear)(\s+[\w.]+){0,2}\s*[,!:]\s*`)
	reGreetingWord   = regexp.MustCompile(`(?i)^(hey|hi|hello)\s+`)
	reClosingLine    = regexp.MustCompile(`(?i)^(thanks|thank you|thx|cheers|regards|best|best regards|kind regards|warm regards|sincerely|yours truly|talk soon|take care)[,.!]*(\s+\w+)?[,.!]*$`)
	reClosingTail    = regexp.MustCompile(`(?i)[,.!\s]+(thanks|thx|thank you|cheers)[.!]*$`)

	reSlang = regexp.MustCompile(`(?i)\b(u|ur|pls|plz|thx|asap|gonna|wanna|gotta|tmrw|tmr|bc|cuz|idk)\b`)
	reLoneI = regexp.MustCompile(`\bi\b`)

	reIrregularNeg = regexp.MustCompile(`(?i)\b(can|won|shan|ain)'t\b`)
	reNeg          = regexp.MustCompile(`(?i)\b(\w+)n't\b`)
	reLets         = regexp.MustCompile(`(?i)\blet's\b`)
	reIs           = regexp.MustCompile(`(?i)\b(it|that|what|there|here|he|she|who|where)'s\b`)
	reSuffix       = regexp.MustCompile(`(?i)\b(\w+)'(re|ve|ll|d|m)\b`)

	reFiller = regexp.MustCompile(`(?i)\b(i was wondering if|i wanted to ask if|i think that|i think|just|really|very|actually|basically|literally|kind of|sort of)\s+`)

	reSentence = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

var slang = map[string]string{
	"u":     "you",
	"ur":    "your",
	"pls":   "please",
	"plz":   "please",
	"thx":   "thanks",
	"asap":  "as soon as possible",
	"gonna": "going to",
	"wanna": "want to",
	"gotta": "have to",
	"tmrw":  "tomorrow",
	"tmr":   "tomorrow",
	"bc":    "because",
	"cuz":   "because",
	"idk":   "I do not know",
}

var irregularNeg = map[string]string{
	"can":  "cannot",
	"won":  "will not",
	"shan": "shall not",
	"ain":  "is not",
}

var suffixes = map[string]string{
	"re": "are",
	"ve": "have",
	"ll": "will",
	"d":  "would",
	"m":  "am",
}

var (
	questionLead = map[string]bool{
		"can": true, "could": true, "would": true, "will": true, "should": true,
		"shall": true, "may": true, "do": true, "does": true, "did": true,
		"is": true, "are": true,
	}
	questionSubject = map[string]bool{
		"you": true, "we": true, "i": true, "they": true, "he": true, "she": true,
		"it": true, "someone": true, "anyone": true, "there": true, "this": true, "that": true,
	}
	questionWord = map[string]bool{
		"when": true, "what": true, "where": true, "why": true, "how": true, "who": true, "which": true,
	}
)

// paragraphs splits text on blank lines, joining wrapped lines.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "’", "'")
	var out []string
	for _, block := range reBlank.Split(strings.TrimSpace(text), -1) {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}

// stripFrame removes a greeting at the start and a sign-off at the end so the
// tone's own greeting and closing are not doubled.
func stripFrame(paras []string) []string {
	lines := flatten(paras)
	if len(lines) == 0 {
		return nil
	}

	if reGreetingLine.MatchString(lines[0].text) && len(lines) > 1 {
		lines = lines[1:]
	} else if loc := reGreetingPrefix.FindStringIndex(lines[0].text); loc != nil && loc[1] < len(lines[0].text) {
		lines[0].text = lines[0].text[loc[1]:]
	} else if loc := reGreetingWord.FindStringIndex(lines[0].text); loc != nil && loc[1] < len(lines[0].text) {
		lines[0].text = lines[0].text[loc[1]:]
	}

	for len(lines) > 1 {
		last := lines[len(lines)-1].text
		prev := lines[len(lines)-2].text
		switch {
		case reClosingLine.MatchString(last):
			lines = lines[:len(lines)-1]
			continue
		case looksLikeName(last) && reClosingLine.MatchString(prev):
			lines = lines[:len(lines)-2]
			continue
		}
		break
	}

	if n := len(lines); n > 0 {
		if loc := reClosingTail.FindStringIndex(lines[n-1].text); loc != nil && loc[0] > 0 {
			lines[n-1].text = lines[n-1].text[:loc[0]]
		}
	}
	return unflatten(lines)
}

type line struct {
	para int
	text string
}

func flatten(paras []string) []line {
	var out []line
	for i, p := range paras {
		for _, l := range strings.Split(p, "\n") {
			out = append(out, line{para: i, text: l})
		}
	}
	return out
}

func unflatten(lines []line) []string {
	var out []string
	current := -1
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		if l.para != current {
			out = append(out, l.text)
			current = l.para
			continue
		}
		out[len(out)-1] += " " + l.text
	}
	return out
}

func looksLikeName(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 3 {
		return false
	}
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		if !unicode.IsLetter(r) {
			return false
		}
	}
	last := s[len(s)-1]
	return last != '.' && last != '?' && last != '!'
}

func replaceSlang(s string) string {
	return reSlang.ReplaceAllStringFunc(s, func(m string) string {
		if repl, ok := slang[strings.ToLower(m)]; ok {
			return repl
		}
		return m
	})
}

// expandContractions rewrites contractions to their full forms.
func expandContractions(s string) string {
	s = reIrregularNeg.ReplaceAllStringFunc(s, func(m string) string {
		stem := strings.ToLower(strings.TrimSuffix(m[:len(m)-2], "'"))
		return matchCase(m, irregularNeg[stem])
	})
	s = reNeg.ReplaceAllString(s, "$1 not")
	s = reLets.ReplaceAllStringFunc(s, func(m string) string { return matchCase(m, "let us") })
	s = reIs.ReplaceAllString(s, "$1 is")
	s = reSuffix.ReplaceAllStringFunc(s, func(m string) string {
		parts := reSuffix.FindStringSubmatch(m)
		return parts[1] + " " + suffixes[strings.ToLower(parts[2])]
	})
	return s
}

func dropFiller(s string) string {
	return reFiller.ReplaceAllString(s, "")
}

// sentences normalizes spacing, capitalization and end punctuation.
func sentences(para string) string {
	para = reSpaces.ReplaceAllString(strings.TrimSpace(para), " ")
	para = reLoneI.ReplaceAllString(para, "I")
	var out []string
	for _, raw := range reSentence.FindAllString(para, -1) {
		s := strings.TrimSpace(raw)
		s = strings.Trim(s, ", ")
		if s == "" || strings.Trim(s, ".!?") == "" {
			continue
		}
		s = capitalize(s)
		if !strings.ContainsAny(s[len(s)-1:], ".!?") {
			if isQuestion(s) {
				s += "?"
			} else {
				s += "."
			}
		}
		out = append(out, s)
	}
	return strings.Join(out, " ")
}

func isQuestion(s string) bool {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ",")
	if questionWord[first] {
		return true
	}
	return len(fields) > 1 && questionLead[first] && questionSubject[strings.Trim(fields[1], ",")]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	if strings.HasPrefix(s, "I ") || s == "I" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func matchCase(original, repl string) string {
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(r) {
		return capitalize(repl)
	}
	return repl
}
