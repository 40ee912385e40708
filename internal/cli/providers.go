package cli

import (
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func providersCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the provider sub-addressing rules in effect",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := e.application()
			if err != nil {
				return err
			}
			defer e.close()

			tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
			for _, entry := range a.Rules.Entries() {
				if _, err := tw.Write([]byte(entry.Domain + "\t" + entry.Rule.String() + "\n")); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
