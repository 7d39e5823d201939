package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cadenzr/turnpike/src/storage"
	"github.com/charmbracelet/lipgloss"
)

// UsageCmd reports recorded token usage from the database.
type UsageCmd struct {
	Since   string `help:"Only include usage after this time (RFC3339 or duration like 24h)"`
	History bool   `help:"List individual usage records"`
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func (u *UsageCmd) Run(kctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createCLILogger(cli.LogLevel, cfg.Logging.Format)

	store := openStore(cfg, logger)
	if store == nil {
		return fmt.Errorf("no usage database available")
	}
	defer store.Close()

	rows, err := storage.ListUsageRows(context.Background(), store.DB())
	if err != nil {
		return fmt.Errorf("failed to read usage records: %w", err)
	}

	if u.Since != "" {
		cutoff, err := parseSince(u.Since)
		if err != nil {
			return err
		}
		filtered := rows[:0]
		for _, row := range rows {
			if !row.Timestamp.Before(cutoff) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	total := 0
	for _, row := range rows {
		total += row.Tokens
	}
	mean := 0.0
	if len(rows) > 0 {
		mean = float64(total) / float64(len(rows))
	}

	fmt.Println(headerStyle.Render("Token usage"))
	fmt.Printf("  requests: %d\n", len(rows))
	fmt.Printf("  tokens:   %d\n", total)
	fmt.Printf("  mean:     %.1f tokens/request\n", mean)

	if u.History {
		fmt.Println(headerStyle.Render("History"))
		for _, row := range rows {
			fmt.Printf("  %s  %6d tokens  %s/%s\n",
				row.Timestamp.Format(time.RFC3339), row.Tokens, row.BackendID, row.ModelID)
		}
	}
	return nil
}

// parseSince accepts either an RFC3339 timestamp or a relative duration.
func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse --since value %q", s)
}
