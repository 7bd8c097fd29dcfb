package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"smartmail-backend/internal/client/session"
	"smartmail-backend/internal/email"
)

type outputOptions struct {
	copy bool
	html bool
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.copy, "copy", false, "copy the generated email to the clipboard")
	cmd.Flags().BoolVar(&o.html, "html", false, "print the HTML preview instead of plain text")
}

func newGenerateCmd(g *globals, mode string) *cobra.Command {
	var (
		tone     string
		template string
		file     string
		noSave   bool
		out      outputOptions
	)

	short := "Rewrite an existing email in a different tone"
	use := "rewrite [text...]"
	if mode == string(email.ModeWrite) {
		short = "Write a complete email from a short description"
		use = "write [description...]"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := g.newSession()
			if err := ctrl.SetMode(email.Mode(mode)); err != nil {
				return err
			}
			if err := ctrl.SetTone(email.Tone(strings.ToLower(tone))); err != nil {
				return fmt.Errorf("%w (choose one of %s)", err, toneList())
			}

			draft, err := readDraft(args, file, g.stdin)
			if err != nil {
				return err
			}
			if template != "" {
				if !ctrl.ApplyTemplate(template) {
					return fmt.Errorf("unknown template %q (choose one of %s)", template, strings.Join(email.TemplateNames(), ", "))
				}
				ctrl.AppendTranscript(draft)
			} else {
				ctrl.SetText(draft)
			}

			res, err := ctrl.Submit(cmd.Context(), !noSave)
			if err != nil {
				return err
			}
			return emitResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, out)
		},
	}
	cmd.Flags().StringVarP(&tone, "tone", "t", string(email.DefaultTone), "tone: "+toneList())
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the draft from a file")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the result in history")
	if mode == string(email.ModeWrite) {
		cmd.Flags().StringVar(&template, "template", "", "start from a template: "+strings.Join(email.TemplateNames(), ", "))
	}
	out.bind(cmd)
	return cmd
}

func toneList() string {
	names := make([]string, 0, len(email.Tones()))
	for _, t := range email.Tones() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// emitResult prints the generated email and copies it when asked.
func emitResult(stdout, stderr io.Writer, res email.Result, out outputOptions) error {
	body := res.GeneratedText
	if out.html && res.HTML != "" {
		body = res.HTML
	}
	fmt.Fprintln(stdout, strings.TrimRight(body, "\n"))

	if out.copy {
		if err := clipboard.WriteAll(res.GeneratedText); err != nil {
			fmt.Fprintf(stderr, "Warning: could not copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(stderr, "Copied to clipboard.")
		}
	}
	if res.Provider != "" {
		fmt.Fprintf(stderr, "%s tone, %s mode via %s\n", res.Tone.Label(), res.Mode, res.Provider)
	}
	return nil
}

// noticeLine renders a controller notice for stderr.
func noticeLine(n session.Notice) string {
	if n.Level == session.NoticeError {
		return "Error: " + n.Text
	}
	return n.Text
}
