package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/vigneshgurumohan/agents-store/internal/config"
	"github.com/vigneshgurumohan/agents-store/internal/daemon"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		foreground  bool
		dev         bool
		pprofAddr   string
		envFile     string
		dataSource  string
		dbURL       string
		apiKey      string
		enableOtel  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the marketplace server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := loadEnvFile(envFile); err != nil {
					return err
				}
			}
			home := config.MustHomeFrom(cmd.Context())

			opts := daemon.StartOptions{
				Home:        home,
				Port:        port,
				Dev:         dev,
				PprofAddr:   pprofAddr,
				DataSource:  dataSource,
				DatabaseURL: dbURL,
				APIKey:      apiKey,
				EnableOtel:  enableOtel,
			}

			ui := (&url.URL{Scheme: "http", Host: fmt.Sprintf("localhost:%d", port), Path: "/agents"}).String()

			if foreground {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving in foreground on %s\n", ui)
				return daemon.StartForeground(cmd.Context(), opts)
			}

			pid, err := daemon.StartBackground(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Agents Store started (pid %d)\n", pid)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Marketplace: %s\n", ui)

			// Best-effort open browser (Linux: xdg-open, macOS: open, Windows: start).
			_ = openBrowser(ui)
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port for the HTTP API and marketplace pages")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (do not daemonize)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable dev mode (permissive CORS)")
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "Enable pprof on address (e.g. 127.0.0.1:6060)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load env vars from file (KEY=VALUE per line) before starting")
	cmd.Flags().StringVar(&dataSource, "data-source", "csv", "Record store: csv or postgres")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "DB connection string (for postgres; or set DATABASE_URL)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Require this API key on requests (or set AGENTS_STORE_API_KEY)")
	cmd.Flags().BoolVar(&enableOtel, "otel", true, "Enable OpenTelemetry metrics (Prometheus exporter, HTTP/SSE/chat/upload instrumentation)")

	return cmd
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if key != "" {
			_ = os.Setenv(key, value)
		}
	}
	return sc.Err()
}

func openBrowser(u string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", u).Start()
	default:
		// Linux and others
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return err
		}
		return exec.Command("xdg-open", u).Start()
	}
}
