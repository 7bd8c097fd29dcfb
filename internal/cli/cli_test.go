package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"smartmail-backend/internal/bootstrap"
	"smartmail-backend/internal/client/pipeline"
	"smartmail-backend/internal/client/speech"
	"smartmail-backend/internal/email"
	"smartmail-backend/internal/shared/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	app, err := bootstrap.Build(config.Config{HistoryStore: "memory"})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func testGlobals(srv *httptest.Server) *globals {
	return &globals{
		cfg: config.ClientConfig{
			Server:         srv.URL + "/api",
			RequestTimeout: 10 * time.Second,
			SampleRate:     16000,
		},
		stdin: strings.NewReader(""),
	}
}

func run(t *testing.T, g *globals, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(g)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRewriteCommandUsesToneAndSavesHistory(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)

	out, _, err := run(t, g, "rewrite", "--tone", "formal", "hey i can't make the meeting tomorrow, can we move it")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if !strings.HasPrefix(out, "Dear Sir or Madam,") {
		t.Fatalf("expected formal greeting, got:\n%s", out)
	}
	if strings.Contains(out, "can't") {
		t.Fatalf("formal output kept a contraction:\n%s", out)
	}

	out, _, err = run(t, g, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "Formal") || !strings.Contains(out, "rewrite") {
		t.Fatalf("history table missing record:\n%s", out)
	}
}

func TestWriteCommandFromTemplateAndStdin(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)
	g.stdin = strings.NewReader("Mention the Q3 roadmap.")

	out, _, err := run(t, g, "write", "--template", "meeting", "--tone", "casual", "--no-save")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(out, "Hey there,") {
		t.Fatalf("expected casual greeting, got:\n%s", out)
	}

	out, _, err = run(t, g, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No saved emails.") {
		t.Fatalf("--no-save still stored history:\n%s", out)
	}
}

func TestGenerateCommandRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)

	cases := [][]string{
		{"rewrite", "too short"},
		{"rewrite", "--tone", "sarcastic", "this draft is long enough"},
		{"write", "--template", "party", "plan the celebration"},
	}
	for _, args := range cases {
		if _, _, err := run(t, g, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestHistoryDeleteAndClear(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)

	for _, text := range []string{"confirm the venue booking for friday", "ask finance to approve the travel budget"} {
		if _, _, err := run(t, g, "write", text); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	records, err := g.client().ListHistory(context.Background(), "finance", 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one filtered record, got %v %v", records, err)
	}

	out, _, err := run(t, g, "history", "delete", records[0].ID)
	if err != nil || !strings.Contains(out, "Record deleted.") {
		t.Fatalf("delete: %v %s", err, out)
	}
	_, errOut, err := run(t, g, "history", "delete", records[0].ID)
	if err != nil || !strings.Contains(errOut, "already gone") {
		t.Fatalf("second delete should be a warning: %v %s", err, errOut)
	}

	if _, _, err := run(t, g, "history", "clear"); err == nil {
		t.Fatalf("clear without --yes should fail")
	}
	out, _, err = run(t, g, "history", "clear", "--yes")
	if err != nil || !strings.Contains(out, "Deleted 1 saved emails.") {
		t.Fatalf("clear: %v %s", err, out)
	}
}

type transcriptEngine struct{ finals []string }

func (e transcriptEngine) Open(context.Context, io.Reader) (speech.Stream, error) {
	return &transcriptStream{finals: e.finals}, nil
}

type transcriptStream struct{ finals []string }

func (s *transcriptStream) Recv(context.Context) (speech.Event, error) {
	if len(s.finals) == 0 {
		return speech.Event{}, io.EOF
	}
	text := s.finals[0]
	s.finals = s.finals[1:]
	return speech.Event{Text: text, Final: true}, nil
}

func (s *transcriptStream) Close() error { return nil }

func TestDictateCommandBuildsDraftFromTranscript(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)
	g.engine = transcriptEngine{finals: []string{"ask the design team", "for the updated mockups by thursday"}}

	audio := filepath.Join(t.TempDir(), "clip.pcm")
	if err := os.WriteFile(audio, make([]byte, 320), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	out, errOut, err := run(t, g, "dictate", "--audio", audio, "--no-pacing", "--tone", "concise")
	if err != nil {
		t.Fatalf("dictate: %v", err)
	}
	if !strings.Contains(errOut, "Transcript: ask the design team for the updated mockups by thursday") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
	if !strings.HasPrefix(out, "Hi,") {
		t.Fatalf("expected concise greeting, got:\n%s", out)
	}
}

func TestDictateCommandWithoutSpeech(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)
	g.engine = transcriptEngine{}

	audio := filepath.Join(t.TempDir(), "silence.pcm")
	if err := os.WriteFile(audio, make([]byte, 320), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if _, _, err := run(t, g, "dictate", "--audio", audio, "--no-pacing"); err == nil {
		t.Fatalf("expected error when nothing was transcribed")
	}
}

func TestTUIModelKeys(t *testing.T) {
	srv := newTestServer(t)
	g := testGlobals(srv)
	ctrl := g.newSession()
	var m tea.Model = newTUIModel(context.Background(), ctrl, nil, true)

	press := func(msg tea.KeyMsg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	}

	press(tea.KeyMsg{Type: tea.KeyTab})
	if ctrl.Snapshot().Mode != email.ModeWrite {
		t.Fatalf("tab should switch to write mode")
	}
	press(tea.KeyMsg{Type: tea.KeyCtrlP})
	if ctrl.Snapshot().SelectedTemplate == "" {
		t.Fatalf("ctrl+p should apply a template")
	}
	press(tea.KeyMsg{Type: tea.KeyCtrlU})
	for _, r := range "share the release notes" {
		if r == ' ' {
			press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	press(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := ctrl.Snapshot().DraftText; got != "share the release note" {
		t.Fatalf("unexpected draft %q", got)
	}
	press(tea.KeyMsg{Type: tea.KeyCtrlT})
	if ctrl.Snapshot().Tone != email.ToneProfessional.Next() {
		t.Fatalf("ctrl+t should advance the tone")
	}

	cmd := press(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("ctrl+s should return a submit command")
	}
	m, _ = m.Update(cmd())
	s := ctrl.Snapshot()
	if s.Phase != pipeline.PhaseFulfilled || s.LastResult == nil {
		t.Fatalf("expected fulfilled result, got %#v", s)
	}
	if !strings.Contains(m.View(), "Generated email") {
		t.Fatalf("view should show the generated email")
	}

	press(tea.KeyMsg{Type: tea.KeyCtrlE})
	if ctrl.Snapshot().DraftText != s.LastResult.GeneratedText {
		t.Fatalf("ctrl+e should load the result for editing")
	}

	press(tea.KeyMsg{Type: tea.KeyCtrlL})
	if ctrl.Snapshot().Notice.Level == "" {
		t.Fatalf("ctrl+l without audio should explain why")
	}
	if cmd := press(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Fatalf("esc should quit")
	}
}
