package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/cadenzr/turnpike/src/analytics"
	"github.com/cadenzr/turnpike/src/config"
	"github.com/cadenzr/turnpike/src/executor"
	"github.com/cadenzr/turnpike/src/limits"
	"github.com/cadenzr/turnpike/src/openaiclient"
	"github.com/cadenzr/turnpike/src/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// PromptCmd runs a single conversation turn.
type PromptCmd struct {
	Text         []string `arg:"" help:"The prompt text to send"`
	SystemPrompt string   `short:"s" help:"System prompt override for this turn"`
	Temperature  *float64 `help:"Override temperature for this prompt"`
	MaxTokens    *int     `help:"Override max tokens for this prompt"`
	Stream       bool     `help:"Stream completions from the backend"`
	NoPersist    bool     `help:"Skip database persistence"`
}

var (
	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	toolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	usageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Faint(true)
)

func (p *PromptCmd) Run(kctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createCLILogger(cli.LogLevel, cfg.Logging.Format)

	ctx := context.Background()

	var store *storage.DB
	if !p.NoPersist {
		store = openStore(cfg, logger)
		if store != nil {
			defer store.Close()
		}
	}

	svc, err := buildService(ctx, cfg, cli, store, logger, p.Stream)
	if err != nil {
		return err
	}

	conv := aisdk.NewConversation(uuid.New().String(), cfg.Call.SystemPrompt)
	if store != nil {
		err := storage.CreateConversation(ctx, store.DB(), &storage.Conversation{
			ID:           conv.ID,
			SystemPrompt: cfg.Call.SystemPrompt,
		})
		if err != nil {
			logger.Warn("failed to persist conversation", "error", err)
		}
	}

	result, err := svc.ExecuteTurn(ctx, conv, &executor.TurnRequest{
		Content:      strings.Join(p.Text, " "),
		SystemPrompt: p.SystemPrompt,
		Temperature:  p.Temperature,
		MaxTokens:    p.MaxTokens,
		DisableTools: cli.NoTools,
	})
	if err != nil {
		return err
	}

	for _, msg := range result.ToolMessages {
		fmt.Println(toolStyle.Render(fmt.Sprintf("[tool %s] %s", msg.Name, msg.Content)))
	}
	fmt.Println(replyStyle.Render(result.Content))

	info := svc.Limits().Info()
	fmt.Println(usageStyle.Render(fmt.Sprintf(
		"%d tokens this turn, %d/%s total, %d backend calls",
		result.Usage.TotalTokens, info.UsedTokens, formatLimit(info.MaxTokens), result.BackendCalls)))

	return nil
}

// loadConfig resolves the configuration file and applies CLI overrides.
func loadConfig(cli *CLI) (*config.Config, error) {
	path := cli.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}

	if cli.APIKey != "" {
		cfg.Backend.APIKey = cli.APIKey
	}
	if cli.BaseURL != "" {
		cfg.Backend.BaseURL = cli.BaseURL
	}
	if cli.Model != "" {
		cfg.Backend.Model = cli.Model
	}
	return cfg, nil
}

// openStore opens the sqlite database, or returns nil when it cannot;
// persistence is best effort and never blocks a prompt.
func openStore(cfg *config.Config, logger *slog.Logger) *storage.DB {
	path := config.DatabasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("failed to create data directory", "path", path, "error", err)
		return nil
	}
	store, err := storage.Open(path)
	if err != nil {
		logger.Warn("failed to open database", "path", path, "error", err)
		return nil
	}
	return store
}

// buildService wires the backend, ledger, analytics, and toolbox into a
// turn executor.
func buildService(ctx context.Context, cfg *config.Config, cli *CLI, store *storage.DB, logger *slog.Logger, stream bool) (*executor.Service, error) {
	client := openaiclient.NewClient(openaiclient.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIKey:     cfg.Backend.APIKey,
		RetryCount: cfg.Backend.RetryCount,
		Logger:     logger,
	})
	backend, err := client.Model(ctx, cfg.Backend.Model)
	if err != nil {
		return nil, err
	}

	tracker, err := limits.NewTracker(cfg.Limits.MaxTokenLimit, cfg.Limits.MaxRequestLimit)
	if err != nil {
		return nil, err
	}

	var opts []analytics.Option
	if store != nil {
		opts = append(opts, analytics.WithSink(store))
	}
	recorder := analytics.NewRecorder(logger, opts...)

	toolbox := buildToolbox(cli, logger)

	return executor.NewService(executor.ServiceConfig{
		Backend:        backend,
		BackendID:      backendID(cfg.Backend.BaseURL),
		Limits:         tracker,
		Analytics:      recorder,
		Toolbox:        toolbox,
		Store:          store,
		SystemPrompt:   cfg.Call.SystemPrompt,
		SystemMessages: systemMessages(cfg),
		Temperature:    cfg.Call.Temperature,
		MaxTokens:      cfg.Call.MaxTokens,
		Stream:         stream,
		Dispatch:       dispatchOptions(cfg),
		Logger:         logger,
	})
}

func systemMessages(cfg *config.Config) []*aisdk.Message {
	if len(cfg.Call.SystemMessages) == 0 {
		return nil
	}
	msgs := make([]*aisdk.Message, 0, len(cfg.Call.SystemMessages))
	for _, content := range cfg.Call.SystemMessages {
		msgs = append(msgs, &aisdk.Message{Role: aisdk.RoleSystem, Content: content})
	}
	return msgs
}

// backendID derives a short usage-record label from the endpoint host.
func backendID(baseURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	if host, _, ok := strings.Cut(trimmed, "/"); ok {
		return host
	}
	return trimmed
}

func formatLimit(limit int) string {
	if limit == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", limit)
}
