package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/graph"
)

const dateLayout = "2006-01-02"

func linkCmd(c *cli) *cobra.Command {
	var (
		language  string
		certainty int
		source    string
		notes     string
		start     string
		end       string
	)

	cmd := &cobra.Command{
		Use:   "link OWNER FROM TO TYPE",
		Short: "Create a relationship and its inverse",
		Long: `Create a relationship FROM -> TO of the given TYPE. Entities are
written as kind:id (person:anna, place:berlin); a bare id is of unknown kind.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := entity.ParseRef(args[1])
			if err != nil {
				return err
			}
			to, err := entity.ParseRef(args[2])
			if err != nil {
				return err
			}

			meta := graph.Meta{Source: source, Notes: notes}
			if cmd.Flags().Changed("certainty") {
				meta.Certainty = &certainty
			}
			if meta.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if meta.EndDate, err = parseDate(end); err != nil {
				return err
			}

			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if language == "" {
				language = core.Config.DefaultLanguage
			}

			primary, inverse, err := core.Graph.CreateEdge(cmd.Context(), args[0], from, to, args[3], language, meta)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), map[string]graph.Edge{"primary": primary, "inverse": inverse})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Relationship type language (default from DEFAULT_LANGUAGE)")
	cmd.Flags().IntVar(&certainty, "certainty", graph.DefaultCertainty, "Certainty 0-100")
	cmd.Flags().StringVar(&source, "source", "", "Where the information comes from")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")

	return cmd
}

func unlinkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink OWNER EDGE_ID",
		Short: "Delete both directions of a relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := core.Graph.DeleteEdge(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("relationship %s not found", args[1])
			}
			return c.print(cmd.OutOrStdout(), map[string]string{"deleted": args[1]})
		},
	}
}

func relationshipCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "relationship OWNER EDGE_ID",
		Short: "Show both directions of a relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			edges, err := core.Graph.GetRelationship(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if len(edges) == 0 {
				return fmt.Errorf("relationship %s not found", args[1])
			}
			return c.print(cmd.OutOrStdout(), edges)
		},
	}
}

func edgesCmd(c *cli) *cobra.Command {
	var (
		incoming    bool
		primaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "edges OWNER ENTITY_ID",
		Short: "List the edges of an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			var edges []graph.Edge
			if incoming {
				edges, err = core.Graph.GetEdgesTo(cmd.Context(), args[0], args[1], primaryOnly)
			} else {
				edges, err = core.Graph.GetEdgesFrom(cmd.Context(), args[0], args[1], primaryOnly)
			}
			if err != nil {
				return err
			}
			if edges == nil {
				edges = []graph.Edge{}
			}
			return c.print(cmd.OutOrStdout(), edges)
		},
	}

	cmd.Flags().BoolVar(&incoming, "incoming", false, "List edges pointing at the entity")
	cmd.Flags().BoolVar(&primaryOnly, "primary-only", false, "Show each relationship in its primary direction only")
	return cmd
}

func edgeCmd(c *cli) *cobra.Command {
	var relationType string

	cmd := &cobra.Command{
		Use:   "edge OWNER SOURCE_ID TARGET_ID",
		Short: "Find the edge between two entities",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			edge, found, err := core.Graph.GetEdge(cmd.Context(), args[0], args[1], args[2], relationType)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no edge from %s to %s", args[1], args[2])
			}
			return c.print(cmd.OutOrStdout(), edge)
		},
	}

	cmd.Flags().StringVar(&relationType, "type", "", "Restrict to a relationship type")
	return cmd
}

func pathCmd(c *cli) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "path OWNER FROM_ID TO_ID",
		Short: "Find how two entities are connected",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			path, found, err := core.Graph.FindPath(cmd.Context(), args[0], args[1], args[2], maxDepth)
			if err != nil {
				return err
			}
			if path == nil {
				path = []graph.Edge{}
			}
			return c.print(cmd.OutOrStdout(), map[string]interface{}{"found": found, "path": path})
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "Maximum number of hops (negative uses PATH_MAX_DEPTH)")
	return cmd
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}
