package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/dtb/printer"
)

var getAs string

func init() {
	cmd := newGetCmd()
	cmd.Flags().StringVar(&getAs, "as", "auto", "Decode as auto, str, strlist, u32, u64 or bytes")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <blob> <path>",
		Short: "Get the value of a property",
		Long: `The get command decodes the first property matching path.

Decoders:
  auto    - Guess strings, cells or bytes
  str     - A single NUL-terminated string
  strlist - A list of NUL-terminated strings
  u32     - A list of 32-bit cells
  u64     - Exactly one 64-bit value
  bytes   - Raw bytes in hex

Example:
  dtbctl get board.dtb /model
  dtbctl get board.dtb /memory/reg --as u64
  dtbctl get board.dtb /compatible --as strlist --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	blobPath, propPath := args[0], args[1]

	printVerbose("Opening blob: %s\n", blobPath)

	r, _, unmap, err := openBlob(blobPath, dtb.ValidateLazy, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer unmap()

	item, err := r.FindProperty(propPath)
	if err != nil {
		return fmt.Errorf("failed to find property %q: %w", propPath, err)
	}

	value, text, err := decodeAs(item, getAs)
	if err != nil {
		return fmt.Errorf("failed to decode %q as %s: %w", propPath, getAs, err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"path":  propPath,
			"as":    getAs,
			"value": value,
		})
	}
	printInfo("%s\n", text)
	return nil
}

// decodeAs returns the decoded value for JSON output and its text form.
func decodeAs(item dtb.Item, as string) (any, string, error) {
	switch as {
	case "auto":
		text := printer.FormatValue(item.Value, 0)
		return text, text, nil
	case "str":
		s, err := item.ValueStr()
		return s, s, err
	case "strlist":
		list, err := item.ValueStrList(make([]string, 0, strings.Count(string(item.Value), "\x00")))
		return list, strings.Join(list, "\n"), err
	case "u32":
		cells, err := item.ValueU32List(make([]uint32, 0, len(item.Value)/4))
		words := make([]string, len(cells))
		for i, c := range cells {
			words[i] = fmt.Sprintf("0x%08x", c)
		}
		return cells, strings.Join(words, " "), err
	case "u64":
		v, err := item.ValueU64()
		return v, fmt.Sprintf("0x%016x", v), err
	case "bytes":
		s := hex.EncodeToString(item.Value)
		return s, s, nil
	default:
		return nil, "", fmt.Errorf("unknown decoder %q (must be auto, str, strlist, u32, u64 or bytes)", as)
	}
}
