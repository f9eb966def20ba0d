package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/render"
	"github.com/faucetdb/modelgen/internal/service"
)

// source names where a command reads its catalog from: a registered
// service, or a catalog file when --catalog is given.
type source struct {
	service     string
	catalogFile string
}

func (s source) validate() error {
	switch {
	case s.service == "" && s.catalogFile == "":
		return errors.New("specify a service name or --catalog")
	case s.service != "" && s.catalogFile != "":
		return errors.New("a service name and --catalog are mutually exclusive")
	}
	return nil
}

// catalog loads the catalog for s, with the configured ignore list applied.
func (s source) catalog(ctx context.Context, a *app) (catalog.Catalog, error) {
	if s.catalogFile == "" {
		return a.models.Catalog(ctx, s.service)
	}
	cat, err := catalog.ReadFile(s.catalogFile)
	if err != nil {
		return catalog.Catalog{}, err
	}
	return cat.Apply(appConfig.Generator.CatalogOptions()), nil
}

func bindSourceFlags(cmd *cobra.Command, s *source) {
	cmd.Flags().StringVar(&s.catalogFile, "catalog", "", "Read the schema from a catalog file (.yaml or .json) instead of a database")
}

func newGenerateCmd() *cobra.Command {
	var (
		src        source
		outDir     string
		overwrite  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "generate [service]",
		Aliases: []string{"gen"},
		Short:   "Write Lucid model files for every table",
		Long: `Introspect a service (or read a catalog file), infer relationships and write
one model file per table into the output directory. Pivot tables get no model
of their own.

Existing files are left alone unless --overwrite is given: if any target file
exists, nothing is written. A successful run against a service saves a schema
snapshot that 'modelgen check' compares against.`,
		Example: `  modelgen generate blog
  modelgen generate blog --out app/models --overwrite
  modelgen generate --catalog schema.yaml --out /tmp/models`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				src.service = args[0]
			}
			if outDir == "" {
				outDir = appConfig.Generator.OutputDir
			}
			if !cmd.Flags().Changed("overwrite") {
				overwrite = appConfig.Generator.Overwrite
			}
			return runGenerate(cmd, src, outDir, overwrite, jsonOutput)
		},
	}

	bindSourceFlags(cmd, &src)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config: generator.output_dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing model files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")

	return cmd
}

func runGenerate(cmd *cobra.Command, src source, outDir string, overwrite, jsonOutput bool) error {
	if err := src.validate(); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var gen *service.Generated
	if src.catalogFile != "" {
		var cat catalog.Catalog
		if cat, err = src.catalog(cmd.Context(), a); err != nil {
			return err
		}
		gen, err = a.models.GenerateCatalog(cat, outDir, overwrite)
	} else {
		gen, err = a.models.Generate(cmd.Context(), src.service, outDir, overwrite)
	}
	if errors.Is(err, render.ErrExists) {
		return fmt.Errorf("%w (use --overwrite to replace)", err)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), gen)
	}
	printGenerated(cmd.OutOrStdout(), gen)
	return nil
}

func printGenerated(w io.Writer, gen *service.Generated) {
	for _, f := range gen.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	fmt.Fprintf(w, "Generated %d models with %d relationships", gen.Models, gen.Relationships)
	if len(gen.Pivots) > 0 {
		fmt.Fprintf(w, " (%d pivot tables)", len(gen.Pivots))
	}
	fmt.Fprintln(w)
	for _, d := range gen.Diagnostics {
		fmt.Fprintf(w, "  note: %s\n", d)
	}
}
