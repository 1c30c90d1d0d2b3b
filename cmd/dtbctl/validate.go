package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <blob>",
		Short: "Validate blob structure",
		Long: `The validate command checks a device tree blob for structural
integrity: the header and block layout, the reservation map, and a full walk
of the structure block checking token encoding, node nesting, a single root
and that every property sits inside a node.

Exits non-zero when the blob is invalid.

Example:
  dtbctl validate board.dtb
  dtbctl validate board.dtb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(args []string) error {
	blobPath := args[0]

	printVerbose("Validating blob: %s\n", blobPath)

	_, _, unmap, err := openBlob(blobPath, dtb.ValidateEager, newLogger(os.Stderr))
	if err == nil {
		defer unmap()
	}

	// Prepare result
	result := map[string]any{
		"file":  blobPath,
		"valid": err == nil,
	}
	var derr *dtb.Error
	if errors.As(err, &derr) {
		result["error"] = derr.Code.String()
		result["category"] = derr.Kind().String()
		if derr.Offset >= 0 {
			result["struct_offset"] = derr.Offset
		}
	} else if err != nil {
		result["error"] = err.Error()
	}

	// Output as JSON if requested
	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	printInfo("\nValidating %s...\n\n", blobPath)
	if err != nil {
		printInfo("  ✗ Validation failed: %v\n", err)
		return err
	}
	printInfo("  ✓ Header valid\n")
	printInfo("  ✓ Block layout valid\n")
	printInfo("  ✓ Structure block valid\n")
	return nil
}
