package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/vigneshgurumohan/agents-store/internal/config"
	"github.com/vigneshgurumohan/agents-store/internal/store/csvstore"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the data directory, store health, and optional integrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())
			out := cmd.OutOrStdout()

			var problems []string

			if err := os.MkdirAll(config.DataDir(home), 0o755); err != nil {
				problems = append(problems, fmt.Sprintf("data dir not writable: %v", err))
			} else {
				st, err := csvstore.Open(config.DataDir(home))
				if err != nil {
					problems = append(problems, fmt.Sprintf("csv store: %v", err))
				} else {
					h := st.Health(cmd.Context())
					_ = st.Close()
					_, _ = fmt.Fprintf(out, "store: %s (%s)\n", h.Status, h.DataSource)
					if len(h.MissingFiles) > 0 {
						_, _ = fmt.Fprintf(out, "  missing tables (run seed): %v\n", h.MissingFiles)
					}
					if h.Status == "unhealthy" {
						problems = append(problems, "csv store unhealthy: "+h.Error)
					}
				}
			}

			cfg := config.FromEnv()
			if cfg.LLM.APIKey == "" {
				_, _ = fmt.Fprintln(out, "llm: not configured (set OPENAI_API_KEY); chat runs in fallback mode")
			} else {
				_, _ = fmt.Fprintf(out, "llm: configured (model %s)\n", cfg.LLM.Model)
			}
			if cfg.S3.Bucket == "" {
				_, _ = fmt.Fprintln(out, "object store: not configured (set S3_BUCKET); uploads disabled")
			} else {
				_, _ = fmt.Fprintf(out, "object store: bucket %s (%s)\n", cfg.S3.Bucket, cfg.S3.Endpoint)
			}

			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("doctor checks failed")
			}
			_, _ = fmt.Fprintln(out, "ok")
			return nil
		},
	}
	return cmd
}
