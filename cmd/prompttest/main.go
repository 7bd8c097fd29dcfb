package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"smartmail-backend/internal/bootstrap"
	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm"
	"smartmail-backend/internal/llm/local"
	"smartmail-backend/internal/shared/config"
)

// prompttest renders the prompt for one request and runs it against a single
// provider, or the full chain, without touching history.
func main() {
	cfg := config.Load()

	text := flag.String("text", "", "Source text (description in write mode, draft in rewrite mode)")
	textPath := flag.String("text-file", "", "Read the source text from a file")
	tone := flag.String("tone", string(email.DefaultTone), "Tone")
	mode := flag.String("mode", string(email.DefaultMode), "write or rewrite")
	provider := flag.String("provider", "chain", "groq, openai, gemini, local or chain")
	dryRun := flag.Bool("dry-run", false, "Print the prompt without calling a provider")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	flag.Parse()

	source := *text
	if strings.TrimSpace(*textPath) != "" {
		raw, err := os.ReadFile(*textPath)
		if err != nil {
			exitErr(fmt.Sprintf("read text: %v", err))
		}
		source = string(raw)
	}

	req, err := email.NewRequest(source, email.Tone(*tone), email.Mode(*mode), false)
	if err != nil {
		exitErr(err.Error())
	}
	prompt := llm.BuildPrompt(req, bootstrap.Params(cfg.LLM))

	if *dryRun {
		writeOutput(*outPath, map[string]any{"messages": prompt.Messages(), "params": prompt.Params})
		return
	}

	chain, err := buildChain(*provider, cfg)
	if err != nil {
		exitErr(err.Error())
	}

	start := time.Now()
	completion, err := chain.Generate(context.Background(), prompt)
	if err != nil {
		exitErr(fmt.Sprintf("generate: %v", err))
	}
	html, err := email.RenderHTML(completion.Text)
	if err != nil {
		exitErr(fmt.Sprintf("render html: %v", err))
	}
	writeOutput(*outPath, map[string]any{
		"provider":    completion.Provider,
		"tone":        req.Tone,
		"mode":        req.Mode,
		"duration_ms": time.Since(start).Milliseconds(),
		"text":        completion.Text,
		"html":        html,
	})
}

// buildChain narrows the configured providers to one name, keeping the local
// generator as the fallback.
func buildChain(name string, cfg config.Config) (*llm.Chain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	llmCfg := cfg.LLM
	switch name {
	case "", "chain":
	case "local":
		llmCfg.Providers = nil
	case "groq", "openai", "gemini":
		llmCfg.Providers = []string{name}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	providers := bootstrap.BuildProviders(context.Background(), llmCfg)
	if name != "" && name != "chain" && name != "local" && len(providers) == 0 {
		return nil, fmt.Errorf("provider %s is not configured", name)
	}
	return llm.NewChain(providers, local.New(), llmCfg.AttemptTimeout), nil
}

func writeOutput(path string, payload any) {
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')
	if path != "" {
		if err := os.WriteFile(path, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
