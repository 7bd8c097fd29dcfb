package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"smartmail-backend/internal/client/pipeline"
	"smartmail-backend/internal/client/session"
	"smartmail-backend/internal/client/speech"
	"smartmail-backend/internal/email"
)

func newTUICmd(g *globals) *cobra.Command {
	var (
		audio  string
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive editor for writing and rewriting emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := g.newSession()
			var adapter *speech.Adapter
			if audio != "" {
				adapter = speech.NewAdapter(g.speechEngine(g.cfg.SpeechLanguage), speech.NewReaderSource(audio, g.cfg.SampleRate, speech.DefaultChannels))
				adapter.NoSpeechTimeout = g.cfg.NoSpeechTimeout
				ctrl.BindSpeech(adapter)
				defer adapter.Stop()
			}

			m := newTUIModel(cmd.Context(), ctrl, adapter, !noSave)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			// Observers fire from inside Update too, so Send must not block it.
			ctrl.OnChange(func(session.State) { go p.Send(refreshMsg{}) })
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "audio file or \"-\" to enable dictation with ctrl+l")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store results in history")
	return cmd
}

type refreshMsg struct{}

type settledMsg struct{ err error }

type copiedMsg struct{ err error }

type tuiModel struct {
	ctx      context.Context
	ctrl     *session.Controller
	adapter  *speech.Adapter
	persist  bool
	state    session.State
	template int
	width    int
}

func newTUIModel(ctx context.Context, ctrl *session.Controller, adapter *speech.Adapter, persist bool) tuiModel {
	return tuiModel{ctx: ctx, ctrl: ctrl, adapter: adapter, persist: persist, state: ctrl.Snapshot(), template: -1}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	case settledMsg:
		// the controller already recorded the outcome as a notice
	case copiedMsg:
		if msg.err != nil {
			m.ctrl.SetNotice(session.Notice{Level: session.NoticeError, Text: "Could not copy: " + msg.err.Error()})
		} else {
			m.ctrl.SetNotice(session.Notice{Level: session.NoticeInfo, Text: "Copied to clipboard"})
		}
	}
	m.state = m.ctrl.Snapshot()
	return m, cmd
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := m.ctrl.Snapshot()
	switch msg.String() {
	case "ctrl+c", "esc":
		return nil, true
	case "tab":
		m.template = -1
		m.report(m.ctrl.SetMode(s.Mode.Toggle()))
	case "ctrl+t":
		m.report(m.ctrl.SetTone(s.Tone.Next()))
	case "ctrl+p":
		if s.Mode == email.ModeWrite {
			names := email.TemplateNames()
			m.template = (m.template + 1) % len(names)
			m.ctrl.ApplyTemplate(names[m.template])
		}
	case "ctrl+s":
		return m.submit(false), false
	case "ctrl+r":
		return m.submit(true), false
	case "ctrl+e":
		m.report(m.ctrl.LoadResultForEditing())
	case "ctrl+y":
		return copyResult(s), false
	case "ctrl+l":
		m.toggleListening(s)
	case "ctrl+u":
		m.ctrl.SetText("")
	case "backspace":
		if r := []rune(s.DraftText); len(r) > 0 {
			m.ctrl.SetText(string(r[:len(r)-1]))
		}
	case "enter":
		m.ctrl.SetText(s.DraftText + "\n")
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.ctrl.SetText(s.DraftText + string(msg.Runes))
		case tea.KeySpace:
			m.ctrl.SetText(s.DraftText + " ")
		}
	}
	return nil, false
}

func (m *tuiModel) submit(regenerate bool) tea.Cmd {
	ctx, ctrl, persist := m.ctx, m.ctrl, m.persist
	return func() tea.Msg {
		var err error
		if regenerate {
			_, err = ctrl.Regenerate(ctx)
		} else {
			_, err = ctrl.Submit(ctx, persist)
		}
		return settledMsg{err: err}
	}
}

func (m *tuiModel) report(err error) {
	if err != nil {
		m.ctrl.SetNotice(session.Notice{Level: session.NoticeError, Text: err.Error()})
	}
}

// toggleListening errors land in the notice via StartListening.
func (m *tuiModel) toggleListening(s session.State) {
	if m.adapter == nil {
		m.ctrl.SetNotice(session.Notice{Level: session.NoticeError, Text: "Start with --audio to enable dictation"})
		return
	}
	if s.Listening {
		m.adapter.Stop()
		return
	}
	m.ctrl.StartListening(m.ctx, m.adapter)
}

func copyResult(s session.State) tea.Cmd {
	if s.LastResult == nil || !s.LastResult.Success {
		return nil
	}
	text := s.LastResult.GeneratedText
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	interimStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m tuiModel) View() string {
	s := m.state
	width := m.width - 4
	if width < 40 {
		width = 76
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SmartMail"))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("mode ") + activeStyle.Render(string(s.Mode)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("tone ") + activeStyle.Render(s.Tone.Label()))
	if s.SelectedTemplate != "" {
		b.WriteString("  " + labelStyle.Render("template ") + activeStyle.Render(s.SelectedTemplate))
	}
	b.WriteString("  " + labelStyle.Render("status ") + activeStyle.Render(phaseLabel(s)))
	b.WriteString("\n\n")

	heading := "Email to rewrite"
	if s.Mode == email.ModeWrite {
		heading = "Describe the email"
	}
	draft := s.DraftText + "█"
	if s.InterimText != "" {
		draft = s.DraftText + " " + interimStyle.Render(s.InterimText) + "█"
	}
	b.WriteString(labelStyle.Render(heading) + "\n")
	b.WriteString(boxStyle.Width(width).Render(draft) + "\n")
	if s.Invalid != "" && strings.TrimSpace(s.DraftText) != "" {
		b.WriteString(errorStyle.Render(s.Invalid) + "\n")
	}

	if s.LastResult != nil && s.LastResult.Success {
		meta := fmt.Sprintf("Generated email (%s, %s)", s.LastResult.Tone.Label(), s.LastResult.Provider)
		b.WriteString("\n" + labelStyle.Render(meta) + "\n")
		b.WriteString(boxStyle.Width(width).Render(s.LastResult.GeneratedText) + "\n")
	}

	switch s.Notice.Level {
	case session.NoticeError:
		b.WriteString("\n" + errorStyle.Render(s.Notice.Text) + "\n")
	case session.NoticeInfo:
		b.WriteString("\n" + infoStyle.Render(s.Notice.Text) + "\n")
	}

	help := "tab mode • ctrl+t tone • ctrl+s generate • ctrl+r regenerate • ctrl+e edit result • ctrl+y copy • ctrl+u clear • esc quit"
	if s.Mode == email.ModeWrite {
		help = "ctrl+p template • " + help
	}
	if m.adapter != nil {
		help = "ctrl+l dictate • " + help
	}
	b.WriteString("\n" + helpStyle.Width(width).Render(help))
	return b.String()
}

func phaseLabel(s session.State) string {
	switch {
	case s.Listening:
		return "listening"
	case s.Phase == pipeline.PhasePending:
		return "generating..."
	case s.Phase == pipeline.PhaseFulfilled:
		return "done"
	case s.Phase == pipeline.PhaseRejected:
		return "failed"
	default:
		return "ready"
	}
}
