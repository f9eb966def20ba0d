package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/snapshot"
)

// errModelsStale is returned by check --fail-on-drift when a change touches
// relationships.
var errModelsStale = errors.New("schema drift affects relationships; regenerate the models")

func newCheckCmd() *cobra.Command {
	var (
		jsonOutput  bool
		failOnDrift bool
	)

	cmd := &cobra.Command{
		Use:   "check <service>",
		Short: "Compare the live schema with the last generated snapshot",
		Long: `Report every table and column change since the last 'modelgen generate' for
the service. Changes that touch foreign keys are marked: the relationships in
the generated models no longer match the database.`,
		Example: `  modelgen check blog
  modelgen check blog --fail-on-drift   # non-zero exit when models are stale`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.models.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if failOnDrift && report.AffectsRelationships {
				return errModelsStale
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the drift report as JSON")
	cmd.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "Exit with an error when relationships are affected")

	return cmd
}

func printReport(w io.Writer, report snapshot.Report) {
	if !report.HasDrift() {
		fmt.Fprintf(w, "%s: no drift (%d tables)\n", report.ServiceName, report.TotalTables)
		return
	}

	fmt.Fprintf(w, "%s: %d of %d tables drifted\n", report.ServiceName, report.DriftedTables, report.TotalTables)
	for _, t := range report.Tables {
		if !t.HasDrift {
			continue
		}
		fmt.Fprintf(w, "\n  %s\n", t.TableName)
		for _, c := range t.Changes {
			marker := " "
			if c.AffectsRelationships {
				marker = "!"
			}
			fmt.Fprintf(w, "  %s %s\n", marker, c.Description)
		}
	}
	if report.AffectsRelationships {
		fmt.Fprintln(w, "\n! changes relationships: run 'modelgen generate --overwrite'")
	}
}
