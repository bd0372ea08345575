package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kinship-graph/backend/internal/catalog"
	"kinship-graph/backend/internal/store"
)

func seedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the built-in relationship type vocabulary",
		Long:  "Seed the built-in bilingual vocabulary. Does nothing when it was seeded before.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			result, err := core.Catalog.Seed(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), map[string]interface{}{
				"already_seeded": result.AlreadySeeded,
				"added":          result.Added,
				"failed":         result.Failed,
			})
		},
	}
}

func typesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage relationship types",
	}

	var language string
	list := &cobra.Command{
		Use:   "list",
		Short: "List relationship types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			types, err := core.Catalog.ListTypes(cmd.Context(), language)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), types)
		},
	}
	list.Flags().StringVar(&language, "language", "", "Only this language (default all)")

	var (
		addLanguage string
		display     string
		inverse     string
		category    string
	)
	add := &cobra.Command{
		Use:   "add TYPE",
		Short: "Register or replace a relationship type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if addLanguage == "" {
				addLanguage = core.Config.DefaultLanguage
			}
			t, err := core.Catalog.AddType(cmd.Context(), args[0], addLanguage, display, inverse, category)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), t)
		},
	}
	add.Flags().StringVar(&addLanguage, "language", "", "Language (default from DEFAULT_LANGUAGE)")
	add.Flags().StringVar(&display, "display", "", "Display name (default TYPE)")
	add.Flags().StringVar(&inverse, "inverse", "", "Inverse type (default self-inverse)")
	add.Flags().StringVar(&category, "category", "", "Category such as family, place, thing, event")

	vocabulary := &cobra.Command{
		Use:   "vocabulary",
		Short: "Print the built-in vocabulary without touching the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := catalog.Vocabulary()
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), types)
		},
	}

	cmd.AddCommand(list, add, vocabulary)
	return cmd
}

func schemaCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema a store backend expects",
		Long: `Print the DDL a backend expects. Applying it is part of deployment;
the services never create tables themselves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch backend {
			case "postgres":
				fmt.Fprintln(cmd.OutOrStdout(), store.PostgresSchema)
			case "neo4j":
				fmt.Fprintln(cmd.OutOrStdout(), store.Neo4jConstraints)
			default:
				return fmt.Errorf("no schema for backend %q", backend)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "postgres", "Backend (postgres, neo4j)")
	return cmd
}
