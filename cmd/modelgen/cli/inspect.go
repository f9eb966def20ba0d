package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/descriptor"
)

func newInspectCmd() *cobra.Command {
	var (
		src         source
		table       string
		saveCatalog string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [service]",
		Short: "Print the inferred relationships without writing files",
		Long: `Show every model modelgen would generate, with its relationship properties,
the detected pivot tables and any diagnostics. --save-catalog writes the
catalog that was inspected to a file, for offline generation later.`,
		Example: `  modelgen inspect blog
  modelgen inspect blog --table users
  modelgen inspect blog --save-catalog blog.yaml
  modelgen inspect --catalog blog.yaml --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				src.service = args[0]
			}
			if err := src.validate(); err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := src.catalog(cmd.Context(), a)
			if err != nil {
				return err
			}
			if saveCatalog != "" {
				if err := catalog.WriteFile(saveCatalog, cat); err != nil {
					return err
				}
				a.logger.Info("catalog saved", "path", saveCatalog, "tables", len(cat.Tables))
			}

			res := a.models.BuildCatalog(cat)
			if table != "" {
				m, ok := res.Model(table)
				if !ok {
					return fmt.Errorf("no model for %q", table)
				}
				res = &descriptor.Result{Models: []descriptor.Model{m}, Graph: res.Graph}
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printInspection(cmd.OutOrStdout(), res)
		},
	}

	bindSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&table, "table", "", "Only show one model (model or table name)")
	cmd.Flags().StringVar(&saveCatalog, "save-catalog", "", "Write the catalog to this file (.yaml or .json)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print models and the relationship graph as JSON")

	return cmd
}

func printInspection(w io.Writer, res *descriptor.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tTABLE\tPROPERTY\tTYPE\tRELATED\tVIA")
	for _, m := range res.Models {
		if len(m.Relationships) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\n", m.Name, m.TableName)
			continue
		}
		for _, d := range m.Relationships {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.Name, m.TableName, d.Property, d.Kind, d.RelatedModel, d.Key)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	g := res.Graph
	if len(g.Pivots) > 0 {
		fmt.Fprintf(w, "\nPivot tables: %s\n", strings.Join(g.Pivots, ", "))
	}
	if len(g.Diagnostics) > 0 {
		fmt.Fprintln(w, "\nDiagnostics:")
		for _, d := range g.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	explicit := lo.Filter(res.Models, func(m descriptor.Model, _ int) bool { return m.ExplicitTable })
	if len(explicit) > 0 {
		fmt.Fprintln(w, "\nModels with an explicit table name:")
		for _, m := range explicit {
			fmt.Fprintf(w, "  %s -> %s\n", m.Name, m.TableName)
		}
	}
	return nil
}
