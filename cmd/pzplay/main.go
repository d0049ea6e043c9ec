// Command pzplay runs a headless pole-zero filter editor and offers
// one-shot coefficient synthesis and analysis.
//
// Usage:
//
//	pzplay [--config file] [--watch]        run a session, commands on stdin
//	pzplay synth --pole 0.5+0.3i --conjugate
//	pzplay analyze --ff 1,2,1 --fb 1,-1,0.34
//
// Without --ff and --fb, analyze reports the built-in demo filter.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/cwbudde/filter-playground/internal/app"
	"github.com/cwbudde/filter-playground/internal/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []app.Option{
		app.WithConfig(cfg),
		app.WithConfigFile(configPath, cmd.Bool("watch")),
		app.WithInput(os.Stdin),
		app.WithOutput(os.Stdout),
		app.WithSignals(true),
	}

	if err := app.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "pzplay",
		Usage:  "Pole-zero IIR filter playground",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Reload the config file when it changes",
				Sources: cli.EnvVars("APP_CONFIG_WATCH"),
			},
		},
		Commands: []*cli.Command{
			synthCommand(),
			analyzeCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
