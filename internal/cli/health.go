package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the TCPWave server is reachable",
		Long: `Probe the TIMS logcat listing endpoint.

Exits non-zero when the server cannot be reached or answers with a status
other than 200.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := st.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer st.closeRuntime()

			res, err := rt.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res.Envelope()); err != nil {
				return err
			}
			if !res.Healthy() {
				return errFailureResult
			}
			return nil
		},
	}
}
