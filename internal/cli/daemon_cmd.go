package cli

import (
	"github.com/vigneshgurumohan/agents-store/internal/config"
	"github.com/vigneshgurumohan/agents-store/internal/daemon"
	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	var (
		port       int
		dev        bool
		pprofAddr  string
		dataSource string
		dbURL      string
		apiKey     string
		enableOtel bool
	)

	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Internal: run the server process",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			return daemon.StartForeground(cmd.Context(), daemon.StartOptions{
				Home:        home,
				Port:        port,
				Dev:         dev,
				PprofAddr:   pprofAddr,
				DataSource:  dataSource,
				DatabaseURL: dbURL,
				APIKey:      apiKey,
				EnableOtel:  enableOtel,
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port for the HTTP API")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable dev mode")
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "Enable pprof on address (e.g. 127.0.0.1:6060)")
	cmd.Flags().StringVar(&dataSource, "data-source", "csv", "Record store: csv or postgres")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "DB connection string (for postgres)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Require this API key on requests")
	cmd.Flags().BoolVar(&enableOtel, "otel", true, "Enable OpenTelemetry metrics")

	return cmd
}
