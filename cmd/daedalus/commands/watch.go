package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/wehubfusion/Daedalus/pkg/builtin/all"
	"github.com/wehubfusion/Daedalus/pkg/discovery"
	"github.com/wehubfusion/Daedalus/pkg/registry"
	"go.uber.org/zap"
)

func newWatchCommand(logger *zap.Logger) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Load the registry and reload units as their manifests change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(manifestRoots) == 0 {
				return fmt.Errorf("watch requires at least one --root")
			}

			promRegistry := prometheus.NewRegistry()
			config := registry.DefaultConfig()
			config.MetricsRegisterer = promRegistry

			reg := registry.New(config, logger)
			reg.AddSource(all.NewSource(logger))
			reg.AddSource(discovery.NewManifestSource(manifestRoots, all.Factories(), logger))
			if err := reg.Load(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = reg.Close(cmd.Context()) }()

			if err := reg.Watch(manifestRoots); err != nil {
				return err
			}
			logger.Info("watching manifest roots", zap.Strings("roots", manifestRoots))

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					logger.Info("metrics endpoint listening", zap.String("addr", metricsAddr))
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("metrics endpoint failed", zap.Error(err))
					}
				}()
				defer func() { _ = server.Close() }()
			}

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint")
	return cmd
}
