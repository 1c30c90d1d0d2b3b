package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/treesrc"
)

var exportOutput string

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <blob>",
		Short: "Export a blob as a YAML tree description",
		Long: `The export command writes the whole blob as an editable YAML tree
description that build turns back into an identical blob. Property values
are typed by guessing: printable strings, then cells, then bytes.

Example:
  dtbctl export board.dtb
  dtbctl export board.dtb -o board.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	blobPath := args[0]

	printVerbose("Opening blob: %s\n", blobPath)

	r, _, unmap, err := openBlob(blobPath, dtb.ValidateEager, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer unmap()

	tree, err := treesrc.FromReader(r)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", blobPath, err)
	}
	out, err := tree.Marshal()
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	printInfo("Exported %s to %s\n", blobPath, exportOutput)
	return nil
}
