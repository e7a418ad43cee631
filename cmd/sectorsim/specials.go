package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/sectorsim/internal/core/specials"
)

var specialsCmd = &cobra.Command{
	Use:   "specials",
	Short: "List the line special table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		table := specials.DoomTable()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tTRIGGER\tREPEAT\tACTION\tSPEED\tNAME")
		for _, code := range table.Codes() {
			ls := table[code]
			fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%g\t%s\n", ls.Code, ls.Trigger, ls.Repeat, ls.Action, ls.Speed, ls.Name)
		}
		return tw.Flush()
	},
}
