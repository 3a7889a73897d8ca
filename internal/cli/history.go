package cli

import (
	"fmt"

	"github.com/samvad-hq/tcpwave-connector/internal/storage"
	"github.com/spf13/cobra"
)

func newHistoryCmd(st *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently journaled invocations",
		Long: `List the newest invocations recorded in the local journal.

The journal is only kept when JOURNAL_TYPE=bbolt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			rt, err := st.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer st.closeRuntime()
			entries, err := rt.History(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if entries == nil {
				entries = []storage.Entry{}
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}
