package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/api"
	"github.com/jingkaihe/agentdex/pkg/logger"
	"github.com/jingkaihe/agentdex/pkg/presenter"
	"github.com/jingkaihe/agentdex/pkg/telemetry"
	"github.com/jingkaihe/agentdex/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Start an HTTP server exposing the catalog API. The in-memory catalog is
loaded from the store on startup and saved back when the server shuts down.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		tracing, _ := cmd.Flags().GetBool("tracing")
		samplerType, _ := cmd.Flags().GetString("sampler")
		samplerRatio, _ := cmd.Flags().GetFloat64("sampler-ratio")

		shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
			Enabled:        tracing,
			ServiceName:    "agentdex",
			ServiceVersion: version.Get().Version,
			SamplerType:    samplerType,
			SamplerRatio:   samplerRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				logger.G(ctx).WithError(err).Warn("Failed to shut down tracer")
			}
		}()

		cat, st, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		server, err := api.NewServer(cat, &api.ServerConfig{Host: host, Port: port})
		if err != nil {
			return err
		}

		presenter.Info(fmt.Sprintf("Serving catalog API on http://%s:%d", host, port))
		if err := server.Start(ctx); err != nil {
			return err
		}

		// The API mutates the in-memory catalog, persist it on the way out.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := saveCatalog(saveCtx, st, cat); err != nil {
			return err
		}
		logger.G(ctx).Info("Catalog saved on shutdown")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "Host to bind the server to")
	serveCmd.Flags().Int("port", 8280, "Port to bind the server to")
	serveCmd.Flags().Bool("tracing", false, "Enable OpenTelemetry tracing")
	serveCmd.Flags().String("sampler", "always", "Trace sampler: always, never, ratio")
	serveCmd.Flags().Float64("sampler-ratio", 0.1, "Sampling ratio when the sampler is 'ratio'")
	rootCmd.AddCommand(serveCmd)
}
