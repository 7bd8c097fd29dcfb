package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"smartmail-backend/internal/client/session"
	"smartmail-backend/internal/client/speech"
	"smartmail-backend/internal/email"
)

func (g *globals) speechEngine(language string) speech.Engine {
	if g.engine != nil {
		return g.engine
	}
	return speech.NewDeepgramEngine(speech.DeepgramConfig{
		APIKey:     g.cfg.DeepgramAPIKey,
		Endpoint:   g.cfg.DeepgramURL,
		Model:      g.cfg.DeepgramModel,
		Language:   language,
		SampleRate: g.cfg.SampleRate,
	})
}

func newDictateCmd(g *globals) *cobra.Command {
	var (
		audio    string
		mode     string
		tone     string
		language string
		noPacing bool
		noSave   bool
		out      outputOptions
	)

	cmd := &cobra.Command{
		Use:   "dictate",
		Short: "Transcribe recorded speech into a draft and generate an email from it",
		Long: `dictate streams 16-bit PCM or WAV audio (a file, or "-" for stdin) to the
speech recognizer, builds the draft from the final transcripts, and submits it.
Requires DEEPGRAM_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := g.newSession()
			if err := ctrl.SetMode(email.Mode(strings.ToLower(mode))); err != nil {
				return err
			}
			if err := ctrl.SetTone(email.Tone(strings.ToLower(tone))); err != nil {
				return fmt.Errorf("%w (choose one of %s)", err, toneList())
			}

			src := speech.NewReaderSource(audio, g.cfg.SampleRate, speech.DefaultChannels)
			src.NoPacing = noPacing
			adapter := speech.NewAdapter(g.speechEngine(language), src)
			adapter.NoSpeechTimeout = g.cfg.NoSpeechTimeout
			ctrl.BindSpeech(adapter)

			stderr := cmd.ErrOrStderr()
			if isTerminal(stderr) {
				ctrl.OnChange(func(s session.State) {
					if s.Listening || s.InterimText != "" {
						fmt.Fprintf(stderr, "\r\033[K%s", s.Preview())
					}
				})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := ctrl.StartListening(ctx, adapter); err != nil {
				return err
			}
			select {
			case <-adapter.Done():
			case <-ctx.Done():
				adapter.Stop()
				<-adapter.Done()
			}
			if isTerminal(stderr) {
				fmt.Fprintln(stderr)
			}

			state := ctrl.Snapshot()
			if strings.TrimSpace(state.DraftText) == "" {
				if state.Notice.Level == session.NoticeError {
					return errors.New(state.Notice.Text)
				}
				return errors.New("no speech was transcribed")
			}
			if state.Notice.Level == session.NoticeError {
				fmt.Fprintln(stderr, noticeLine(state.Notice))
			}
			fmt.Fprintf(stderr, "Transcript: %s\n", state.DraftText)

			res, err := ctrl.Submit(cmd.Context(), !noSave)
			if err != nil {
				return err
			}
			return emitResult(cmd.OutOrStdout(), stderr, res, out)
		},
	}
	cmd.Flags().StringVarP(&audio, "audio", "a", "-", `audio file to transcribe, "-" for stdin`)
	cmd.Flags().StringVarP(&mode, "mode", "m", string(email.ModeWrite), "write or rewrite")
	cmd.Flags().StringVarP(&tone, "tone", "t", string(email.DefaultTone), "tone: "+toneList())
	cmd.Flags().StringVar(&language, "language", g.cfg.SpeechLanguage, "spoken language code")
	cmd.Flags().BoolVar(&noPacing, "no-pacing", false, "stream audio as fast as possible instead of in real time")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the result in history")
	out.bind(cmd)
	return cmd
}
