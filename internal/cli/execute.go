package cli

import (
	"github.com/spf13/cobra"
)

func newExecuteCmd(st *cliState) *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "execute <operation>",
		Short: "Run a TCPWave operation",
		Long: `Run a named operation and print its envelope.

Examples:
  tcpwave execute get_object_details_by_ipaddress --param ip_address=10.1.1.5
  tcpwave execute check_object_exists -p ip_address=10.1.1.5 -p organization_name=Acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := st.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer st.closeRuntime()

			input := make(map[string]any, len(params))
			for k, v := range params {
				input[k] = v
			}

			res, err := rt.Execute(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res.Envelope()); err != nil {
				return err
			}
			if !res.Succeeded() {
				return errFailureResult
			}
			return nil
		},
	}
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "operation parameter as key=value (repeatable)")
	return cmd
}
