package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the top-level command structure.
type CLI struct {
	Config   string `short:"c" help:"Path to config file (defaults to discovery)"`
	APIKey   string `env:"TURNPIKE_API_KEY" help:"Backend API key"`
	BaseURL  string `help:"Custom API base URL"`
	Model    string `short:"m" help:"Model to use"`
	NoTools  bool   `help:"Disable tool usage"`
	LogLevel string `default:"warn" help:"Log level"`

	Prompt  PromptCmd  `cmd:"" help:"Execute a single prompt"`
	Usage   UsageCmd   `cmd:"" help:"Show recorded token usage"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("turnpike"),
		kong.Description("Budgeted LLM conversation runner with parallel tool dispatch"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
