package main

import (
	"log/slog"
	"time"

	"github.com/cadenzr/turnpike/src/config"
	"github.com/cadenzr/turnpike/src/dispatch"
	"github.com/cadenzr/turnpike/src/toolkit"
	"github.com/cadenzr/turnpike/src/toolkit/tools/tool_readfile"
	"github.com/cadenzr/turnpike/src/toolkit/tools/tool_sysinfo"
	"github.com/cadenzr/turnpike/src/toolkit/tools/tool_webfetch"
	"github.com/spf13/afero"
)

// buildToolbox registers the builtin tools. A tool that fails to construct
// is skipped with a warning rather than blocking the prompt.
func buildToolbox(cli *CLI, logger *slog.Logger) *toolkit.Toolbox {
	if cli.NoTools {
		return nil
	}

	tb := toolkit.NewToolbox()
	tb.Use(toolkit.LoggingMiddleware(logger))

	builders := []func() (toolkit.Tool, error){
		func() (toolkit.Tool, error) { return tool_readfile.Tool(afero.NewOsFs()) },
		tool_webfetch.Tool,
		tool_sysinfo.Tool,
	}
	for _, build := range builders {
		tool, err := build()
		if err != nil {
			logger.Warn("failed to build tool", "error", err)
			continue
		}
		if err := tb.Register(tool); err != nil {
			logger.Warn("failed to register tool", "tool", tool.GetName(), "error", err)
		}
	}
	return tb
}

// dispatchOptions maps tool configuration onto dispatcher pacing.
func dispatchOptions(cfg *config.Config) dispatch.Options {
	return dispatch.Options{
		MaxConcurrent: cfg.Tools.MaxConcurrent,
		StaggerDelay:  time.Duration(cfg.Tools.StaggerDelayMs) * time.Millisecond,
		BatchDelay:    time.Duration(cfg.Tools.BatchDelayMs) * time.Millisecond,
		Timeout:       time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
		Sequential:    cfg.Tools.DisableParallel,
	}
}
