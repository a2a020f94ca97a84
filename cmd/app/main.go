package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/slidesmith/internal"
	"github.com/starford/slidesmith/internal/theme"
	pkgconfig "github.com/starford/slidesmith/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// importThemes reads only the import section of the config file, so the
// stateless commands work without a config or the server's secrets.
func importThemes(path string) (*theme.Catalogue, error) {
	var file struct {
		Import internal.ImportConfig `yaml:"import"`
	}
	if _, err := pkgconfig.LoadOptional(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := file.Import.Validate(); err != nil {
		return nil, fmt.Errorf("invalid import config: %w", err)
	}
	return file.Import.Themes()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "slidesmith",
		Usage:  "Slide deck service: text import, styling lint, approval and export",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "import",
				Usage:     "Import a slide text file and print the deck JSON with warnings",
				ArgsUsage: "<file>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					themes, err := importThemes(cmd.String("config"))
					if err != nil {
						return err
					}
					return importFile(os.Stdout, cmd.Args().First(), themes)
				},
			},
			{
				Name:      "lint",
				Usage:     "Print styling violations of a slide text file; exits 1 when any are found",
				ArgsUsage: "<file>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					n, err := lintFile(os.Stdout, cmd.Args().First())
					if err != nil {
						return err
					}
					if n > 0 {
						return cli.Exit(fmt.Sprintf("%d violation(s)", n), 1)
					}
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "Export a deck JSON file as slide text or YAML",
				ArgsUsage: "<deck.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text or yaml",
						Value:   formatText,
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return exportFile(os.Stdout, cmd.Args().First(), cmd.String("format"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
