// Package main provides kinctl, the operator command line for the kinship
// graph. It talks to the configured store directly, without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"kinship-graph/backend/internal/app"
	"kinship-graph/backend/pkg/config"
	"kinship-graph/backend/pkg/logger"
)

const (
	Version = "0.1.0"
	appName = "kinctl"
)

func main() {
	c := &cli{open: openFromEnv}
	err := rootCmd(c).Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries state shared by all subcommands
type cli struct {
	open     func(ctx context.Context, logLevel string) (*app.App, error)
	core     *app.App
	output   string
	logLevel string
}

// app opens the core on first use
func (c *cli) app(ctx context.Context) (*app.App, error) {
	if c.core != nil {
		return c.core, nil
	}
	core, err := c.open(ctx, c.logLevel)
	if err != nil {
		return nil, err
	}
	c.core = core
	return core, nil
}

func (c *cli) close() {
	if c.core != nil {
		_ = c.core.Close(context.Background())
	}
	logger.Sync()
}

func openFromEnv(ctx context.Context, logLevel string) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Env, logLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()
	log.Debug("Opening store", zap.String("backend", cfg.StoreBackend))
	return app.New(ctx, cfg, log)
}

func rootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Operate the kinship relationship graph",
		Long: `kinctl manages relationships, the search index and the relationship
type vocabulary of the kinship graph.

The store backend and its connection settings are read from the
environment (or a .env file): STORE_BACKEND, DATABASE_URL, NEO4J_URI, ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", "json", "Output format (json, yaml)")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		seedCmd(c),
		typesCmd(c),
		linkCmd(c),
		unlinkCmd(c),
		relationshipCmd(c),
		edgesCmd(c),
		edgeCmd(c),
		pathCmd(c),
		indexCmd(c),
		searchCmd(c),
		resolveCmd(c),
		schemaCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// print writes v in the selected output format. YAML keys follow the JSON
// field names.
func (c *cli) print(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	switch c.output {
	case "json", "":
		var out interface{}
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", c.output)
	}
}
