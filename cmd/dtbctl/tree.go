package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/dtb/printer"
)

var (
	treeDepth   int
	treeIndent  int
	treeMaxData int
)

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 = unlimited)")
	cmd.Flags().IntVar(&treeIndent, "indent", printer.DefaultIndentSize, "Spaces per indent level")
	cmd.Flags().IntVar(&treeMaxData, "max-bytes", printer.DefaultMaxValueBytes, "Truncate cell and byte values longer than this (0 = no limit)")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <blob> [path]",
		Short: "Display a subtree in source syntax",
		Long: `The tree command prints the node at path (default "/") and everything
below it in device tree source syntax.

Example:
  dtbctl tree board.dtb
  dtbctl tree board.dtb /cpus --depth 2
  dtbctl tree board.dtb /soc/serial@1000 --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
	return cmd
}

func runTree(args []string) error {
	blobPath := args[0]
	nodePath := "/"
	if len(args) > 1 {
		nodePath = args[1]
	}

	printVerbose("Opening blob: %s\n", blobPath)

	r, _, unmap, err := openBlob(blobPath, dtb.ValidateLazy, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer unmap()

	// Configure printer options
	opts := printer.DefaultOptions()
	opts.MaxDepth = treeDepth
	opts.IndentSize = treeIndent
	opts.MaxValueBytes = treeMaxData
	if jsonOut {
		opts.Format = printer.FormatJSON
	}

	if err := printer.New(os.Stdout, opts).PrintTree(r.Struct(), nodePath); err != nil {
		return fmt.Errorf("failed to print tree: %w", err)
	}
	return nil
}
