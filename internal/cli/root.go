// Package cli implements the smartmail command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smartmail-backend/internal/client/api"
	"smartmail-backend/internal/client/pipeline"
	"smartmail-backend/internal/client/session"
	"smartmail-backend/internal/client/speech"
	"smartmail-backend/internal/shared/config"
)

// globals are the persistent flags shared by every command.
type globals struct {
	cfg     config.ClientConfig
	server  string
	timeout time.Duration
	verbose bool
	stdin   io.Reader

	// engine replaces the Deepgram engine when set.
	engine speech.Engine
}

func (g *globals) client() *api.Client {
	return api.New(g.server, &http.Client{Timeout: g.timeout})
}

// newSession wires a fresh controller to the configured server.
func (g *globals) newSession() *session.Controller {
	return session.New(pipeline.New(g.client()))
}

// NewRootCmd builds the smartmail command tree.
func NewRootCmd(cfg config.ClientConfig) *cobra.Command {
	return newRootCmd(&globals{cfg: cfg, stdin: os.Stdin})
}

func newRootCmd(g *globals) *cobra.Command {
	cfg := g.cfg
	root := &cobra.Command{
		Use:   "smartmail",
		Short: "Write and rewrite emails in the tone you need",
		Long: `smartmail talks to a SmartMail server to turn a short description into a
complete email, or to rewrite an existing draft in one of eight tones.
Drafts can be typed, piped on stdin, or dictated from recorded audio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), g.verbose)
		},
	}
	root.PersistentFlags().StringVar(&g.server, "server", cfg.Server, "SmartMail API base URL")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(
		newGenerateCmd(g, "write"),
		newGenerateCmd(g, "rewrite"),
		newDictateCmd(g),
		newHistoryCmd(g),
		newTUICmd(g),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := NewRootCmd(config.LoadClient())
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
