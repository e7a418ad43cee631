package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/sectorsim/internal/core/persistence"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect snapshot",
	Short: "Print a snapshot header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		h, err := persistence.ReadHeader(f)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "id       %s\n", h.ID)
		fmt.Fprintf(w, "version  %d\n", h.Version)
		fmt.Fprintf(w, "created  %s\n", h.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "tick     %d\n", h.Tick)
		fmt.Fprintf(w, "digest   %016x\n", h.Digest)
		fmt.Fprintf(w, "sectors  %d\n", h.Sectors)
		fmt.Fprintf(w, "movers   %d\n", h.Movers)
		return nil
	},
}
