package cmd

import (
	"github.com/spf13/cobra"
)

func historyCmd(st *state) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent uploads made from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := st.app.History()
			if err != nil {
				return err
			}

			entries, err := history.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				st.out.warn("no uploads recorded yet")
				return nil
			}
			st.out.history(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (default HISTORY_LIMIT)")
	return cmd
}
