package cli

import (
	"fmt"

	"github.com/vigneshgurumohan/agents-store/internal/config"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/internal/store/csvstore"
	"github.com/vigneshgurumohan/agents-store/internal/store/postgres"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		dataSource string
		dbURL      string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the starter dataset into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.MustHomeFrom(cmd.Context())

			var st store.Store
			var err error
			if dataSource == "postgres" {
				st, err = postgres.Open(dbURL)
			} else {
				st, err = csvstore.Open(config.DataDir(home))
			}
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.SeedDemo(cmd.Context()); err != nil {
				return err
			}
			agents, err := st.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s store (%d agents)\n", dataSource, len(agents))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataSource, "data-source", "csv", "Record store: csv or postgres")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "DB connection string (for postgres; or set DATABASE_URL)")

	return cmd
}
