package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		src        source
		title      string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "openapi [service]",
		Short: "Export the models as OpenAPI component schemas",
		Long: `Generate an OpenAPI 3.1 document with one component schema per model. Columns
become typed properties; relationships become $ref (belongsTo, hasOne) or
arrays of $ref (hasMany, manyToMany).`,
		Example: `  modelgen openapi blog
  modelgen openapi blog -o blog-models.json
  modelgen openapi --catalog blog.yaml --title "Blog models"`,
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
			res := a.models.BuildCatalog(cat)

			if title == "" {
				title = src.service + " models"
				if src.service == "" {
					title = "models"
				}
			}
			doc := openapi.Generate(title, res.Models)

			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal document: %w", err)
			}
			if outputFile == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			if err := os.WriteFile(outputFile, append(b, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outputFile, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d schemas to %s\n", len(res.Models), outputFile)
			return nil
		},
	}

	bindSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: \"<service> models\")")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the document to a file instead of stdout")

	return cmd
}
