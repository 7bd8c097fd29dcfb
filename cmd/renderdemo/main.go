package main

import (
	"bytes"
	"flag"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm/local"
)

const sampleDraft = "hey, i can't make the review on thursday. can we push it to next week? " +
	"i'll send the updated numbers before then."

const sampleDescription = "ask the vendor for an updated quote that includes installation and support"

// renderdemo writes an HTML page showing the offline generator's output for
// every tone in both modes.
func main() {
	outPath := flag.String("out", "./out/tones.html", "output path for the HTML gallery")
	draft := flag.String("draft", sampleDraft, "draft used for rewrite mode")
	description := flag.String("description", sampleDescription, "description used for write mode")
	flag.Parse()

	page, err := renderGallery(*draft, *description)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
	if err := validateGallery(page); err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, page, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: wrote %s\n", *outPath)
}

func renderGallery(draft, description string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>SmartMail tones</title></head><body>\n")
	for _, mode := range []email.Mode{email.ModeRewrite, email.ModeWrite} {
		source := draft
		if mode == email.ModeWrite {
			source = description
		}
		fmt.Fprintf(&buf, "<h1>%s</h1>\n<blockquote>%s</blockquote>\n", html.EscapeString(string(mode)), html.EscapeString(source))
		for _, tone := range email.Tones() {
			text := local.Compose(source, tone, mode)
			body, err := email.RenderHTML(text)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", mode, tone, err)
			}
			fmt.Fprintf(&buf, "<section data-mode=%q data-tone=%q>\n<h2>%s</h2>\n%s</section>\n",
				mode, tone, html.EscapeString(tone.Label()), body)
		}
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}

func validateGallery(page []byte) error {
	s := string(page)
	want := 2 * len(email.Tones())
	if got := strings.Count(s, "<section "); got != want {
		return fmt.Errorf("expected %d sections, got %d", want, got)
	}
	formal := sectionFor(s, "rewrite", "formal")
	if formal == "" {
		return fmt.Errorf("missing formal rewrite section")
	}
	if strings.Contains(formal, "can't") || strings.Contains(formal, "can&#39;t") {
		return fmt.Errorf("formal rewrite kept a contraction")
	}
	return nil
}

func sectionFor(page, mode, tone string) string {
	start := strings.Index(page, fmt.Sprintf("<section data-mode=%q data-tone=%q>", mode, tone))
	if start < 0 {
		return ""
	}
	end := strings.Index(page[start:], "</section>")
	if end < 0 {
		return page[start:]
	}
	return page[start : start+end]
}
