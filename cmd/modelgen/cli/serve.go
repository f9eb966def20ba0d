package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only model preview API",
		Long: `Serve what modelgen would generate for each registered service over HTTP,
without writing any files: schemas, model descriptors with rendered source,
the relationship graph, an OpenAPI document and drift reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				appConfig.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				appConfig.Server.Port = port
			}
			return runServe(cmd)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port (default from config: server.port)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host (default from config: server.host)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sc := appConfig.Server
	cfg := server.DefaultConfig()
	cfg.Host = sc.Host
	cfg.Port = sc.Port
	cfg.RateLimit = sc.RateLimit
	if len(sc.CORS.Origins) > 0 {
		cfg.CORSOrigins = sc.CORS.Origins
	}
	if sc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(sc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("server.shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	srv := server.New(cfg, a.models, a.registry, a.logger)

	base := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "→ modelgen %s\n", versionString())
	fmt.Fprintf(out, "→ Listening on %s\n", base)
	fmt.Fprintf(out, "→ Services:   %s/api/v1/services\n", base)
	fmt.Fprintf(out, "→ Health:     %s/healthz\n", base)
	fmt.Fprintln(out)

	return srv.ListenAndServe()
}
