package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/explorer"
	"github.com/depscope/depscope/pkg/filter"
	"github.com/depscope/depscope/pkg/generate"
	"github.com/depscope/depscope/pkg/model"
)

// resolveCommand creates the non-interactive resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		registry string
		version  string
		output   string
		noCache  bool
		refresh  bool
		full     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <package>",
		Short: "Resolve a package's dependency graph",
		Long: `Resolve fetches a package from the configured registry and expands its
dependency graph. By default only the package's direct dependencies are
fetched; --full expands the graph breadth-first until no unresolved
packages remain.

The resulting graph is printed as JSON, or written to a file with --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			name := args[0]

			backend := c.newBackend(cmd, noCache)
			defer backend.Close()

			source, err := c.newSource(registry, backend, c.config.TTL())
			if err != nil {
				return err
			}

			gen := generate.New(source)
			gen.SetRefresh(refresh)
			controller := explorer.New(gen, filter.New(), explorer.NopView{}, explorer.Options{
				Logger: logger,
			})

			spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Resolving %s from %s", name, source.Name()))
			spin.Start()
			track := newProgress(logger)

			controller.CreateNode(name, version)
			if full {
				controller.ResolveGraph(cmd.Context())
			} else {
				controller.ResolveNodes(cmd.Context(), []string{model.NodeID(name, version)})
			}
			spin.Stop()

			g := gen.Graph()
			nodes := g.Nodes()
			failed := 0
			edges := 0
			for _, el := range g.Elements() {
				if _, ok := el.(*model.Edge); ok {
					edges++
				}
			}
			for _, n := range nodes {
				if n.Error != "" {
					failed++
					printWarning("%s: %s", n.Label(), n.Error)
				}
			}

			track.done(fmt.Sprintf("Resolved %d packages", len(nodes)-failed))
			printStats(len(nodes), edges, false)

			data, err := model.MarshalSnapshot(g)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote graph to %s", output)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&registry, "registry", "r", "", "package registry: npm, pypi, or crates (default from config)")
	cmd.Flags().StringVar(&version, "pkg-version", "", "package version (default: latest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch even when a cached response exists")
	cmd.Flags().BoolVar(&full, "full", false, "expand the entire transitive graph, not just direct dependencies")

	return cmd
}
