package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"
	"github.com/spf13/cobra"
)

func newOperationsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List available operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := tcpwave.Operations()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), ops)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPARAMETERS\tDESCRIPTION")
			for _, op := range ops {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name, strings.Join(op.Parameters, ","), op.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
