package main

import (
	"fmt"
	"os"

	farm "github.com/dgryski/go-farm"
	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <blob>",
		Short: "Validate a blob header and report its layout",
		Long: `The info command validates a device tree blob header and displays
the header fields, block layout and a content fingerprint.

Example:
  dtbctl info board.dtb
  dtbctl info board.dtb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

// blobInfo is the JSON form of the info command.
type blobInfo struct {
	File              string `json:"file"`
	TotalSize         uint32 `json:"total_size"`
	Version           uint32 `json:"version"`
	LastCompVersion   uint32 `json:"last_comp_version"`
	BootCPUID         uint32 `json:"boot_cpuid_phys"`
	ReservedMemOffset uint32 `json:"reserved_mem_offset"`
	ReservedEntries   int    `json:"reserved_entries"`
	StructOffset      uint32 `json:"struct_offset"`
	StructSize        uint32 `json:"struct_size"`
	StringsOffset     uint32 `json:"strings_offset"`
	StringsSize       uint32 `json:"strings_size"`
	Fingerprint       string `json:"fingerprint"`
}

func runInfo(args []string) error {
	blobPath := args[0]

	printVerbose("Opening blob: %s\n", blobPath)

	r, data, unmap, err := openBlob(blobPath, dtb.ValidateLazy, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer unmap()

	h := r.Header()
	rsv := r.ReservedMem()
	info := blobInfo{
		File:              blobPath,
		TotalSize:         h.TotalSize,
		Version:           h.Version,
		LastCompVersion:   h.LastCompVersion,
		BootCPUID:         h.BootCPUID,
		ReservedMemOffset: h.ReservedMemOffset,
		ReservedEntries:   rsv.Len(),
		StructOffset:      h.StructOffset,
		StructSize:        h.StructSize,
		StringsOffset:     h.StringsOffset,
		StringsSize:       h.StringsSize,
		Fingerprint:       fmt.Sprintf("%016x", farm.Fingerprint64(data)),
	}

	// Output as JSON if requested
	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nBlob Information:\n")
	printInfo("  File: %s\n", info.File)
	printInfo("  Size: %d bytes\n", info.TotalSize)
	printInfo("  Version: %d (last compatible %d)\n", info.Version, info.LastCompVersion)
	printInfo("  Boot CPU: %d\n", info.BootCPUID)
	printInfo("  Fingerprint: %s\n", info.Fingerprint)

	printInfo("\nLayout:\n")
	printInfo("  Reserved memory: offset 0x%x, %d entries\n", info.ReservedMemOffset, info.ReservedEntries)
	printInfo("  Structure block: offset 0x%x, %d bytes\n", info.StructOffset, info.StructSize)
	printInfo("  Strings block:   offset 0x%x, %d bytes\n", info.StringsOffset, info.StringsSize)

	return nil
}
