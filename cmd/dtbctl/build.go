package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/treesrc"
	"github.com/joshuapare/dtbkit/internal/writer"
)

var buildVersion uint32

func init() {
	cmd := newBuildCmd()
	cmd.Flags().Uint32Var(&buildVersion, "header-version", 17, "Header version to stamp (16 or later)")
	rootCmd.AddCommand(cmd)
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <tree.yaml> <out.dtb>",
		Short: "Build a blob from a YAML tree description",
		Long: `The build command encodes a YAML tree description (as produced by
export) into a device tree blob. The output file is replaced atomically.

Example:
  dtbctl build board.yaml board.dtb
  dtbctl export board.dtb > board.yaml && dtbctl build board.yaml copy.dtb`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args)
		},
	}
	return cmd
}

func runBuild(args []string) error {
	srcPath, outPath := args[0], args[1]
	log := newLogger(os.Stderr)

	printVerbose("Reading tree: %s\n", srcPath)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read tree: %w", err)
	}
	tree, err := treesrc.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", srcPath, err)
	}

	blob, err := tree.Encode(nil, dtb.WriterOptions{Version: buildVersion})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", srcPath, err)
	}
	log.Debug("encoded blob", "size", len(blob), "bound", tree.EncodedSize())

	// Check the result decodes before replacing the output
	if _, err := dtb.NewWithOptions(blob, dtb.Options{Validation: dtb.ValidateEager, Logger: log}); err != nil {
		return fmt.Errorf("encoded blob does not validate: %w", err)
	}

	fw := &writer.FileWriter{Path: outPath}
	if err := fw.WriteBlob(blob); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"source": srcPath,
			"output": outPath,
			"size":   len(blob),
		})
	}
	printInfo("Wrote %s (%d bytes)\n", outPath, len(blob))
	return nil
}
