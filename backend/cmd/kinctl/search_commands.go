package main

import (
	"github.com/spf13/cobra"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/search"
)

func indexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "index OWNER ENTITY DISPLAY_TEXT",
		Short: "Add an entity's display name to the search index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := entity.ParseRef(args[1])
			if err != nil {
				return err
			}
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := core.Search.Index(cmd.Context(), args[0], args[2], ref); err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), map[string]string{
				"entity":     entity.Key(ref),
				"normalized": search.Normalize(args[2]),
			})
		},
	}
}

func searchCmd(c *cli) *cobra.Command {
	var (
		kinds      []string
		maxResults int
		page       int
		pageSize   int
	)

	cmd := &cobra.Command{
		Use:   "search OWNER QUERY",
		Short: "Fuzzy search entities by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			opts := search.QueryOptions{MaxResults: maxResults}
			for _, k := range kinds {
				opts.Kinds = append(opts.Kinds, entity.ParseKind(k))
			}
			result, err := core.Search.Query(cmd.Context(), args[0], args[1], opts, page, pageSize)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict to entity kinds (person, place, thing, event)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Cap on ranked results")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", search.DefaultPageSize, "Results per page")
	return cmd
}

func resolveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve OWNER QUERY",
		Short: `Answer a relational query such as "John's Mutter"`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			results, err := core.Resolver.Resolve(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), results)
		},
	}
}
