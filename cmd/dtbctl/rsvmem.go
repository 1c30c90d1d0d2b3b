package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
)

func init() {
	rootCmd.AddCommand(newRsvmemCmd())
}

func newRsvmemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvmem <blob>",
		Short: "List reserved memory ranges",
		Long: `The rsvmem command lists the entries of the memory reservation map
in file order. The map terminator is not shown.

Example:
  dtbctl rsvmem board.dtb
  dtbctl rsvmem board.dtb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRsvmem(args)
		},
	}
	return cmd
}

type reservation struct {
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`
}

func runRsvmem(args []string) error {
	blobPath := args[0]

	printVerbose("Opening blob: %s\n", blobPath)

	r, _, unmap, err := openBlob(blobPath, dtb.ValidateLazy, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer unmap()

	rsv := r.ReservedMem()
	if jsonOut {
		entries := make([]reservation, 0, rsv.Len())
		for e := range rsv.All() {
			entries = append(entries, reservation{Address: e.Address, Size: e.Size})
		}
		return printJSON(entries)
	}

	if rsv.Len() == 0 {
		printInfo("No reserved memory\n")
		return nil
	}
	printInfo("%-18s  %-18s\n", "ADDRESS", "SIZE")
	for e := range rsv.All() {
		printInfo("0x%016x  0x%016x\n", e.Address, e.Size)
	}
	return nil
}
