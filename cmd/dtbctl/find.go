package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/dtb/printer"
)

var findLimit int

func init() {
	cmd := newFindCmd()
	cmd.Flags().IntVar(&findLimit, "limit", 0, "Stop after this many matches (0 = all)")
	rootCmd.AddCommand(cmd)
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <blob> <path>",
		Short: "List every node and property matching a path",
		Long: `The find command lists every node or property matching a slash
separated path. Every same-named sibling matches, and a component without a
unit address matches any unit address.

Each match is shown with the structure block offset that follows it.

Example:
  dtbctl find board.dtb /cpus/cpu
  dtbctl find board.dtb /soc/serial/status
  dtbctl find board.dtb /memory --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(args)
		},
	}
	return cmd
}

type findMatch struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Value      string `json:"value,omitempty"`
	NextOffset int    `json:"next_offset"`
}

func runFind(args []string) error {
	blobPath, pattern := args[0], args[1]

	printVerbose("Opening blob: %s\n", blobPath)

	log := newLogger(os.Stderr)
	r, _, unmap, err := openBlob(blobPath, dtb.ValidateLazy, log)
	if err != nil {
		return err
	}
	defer unmap()

	q := r.Struct().Find(pattern)
	var matches []findMatch
	for item, next := range q.All() {
		m := findMatch{Kind: item.Kind.String(), Name: item.Name, NextOffset: next.Offset()}
		if item.IsProperty() {
			m.Value = printer.FormatValue(item.Value, printer.DefaultMaxValueBytes)
		}
		matches = append(matches, m)
		if findLimit > 0 && len(matches) >= findLimit {
			break
		}
	}
	if err := q.Err(); err != nil {
		return fmt.Errorf("failed to search %q: %w", pattern, err)
	}
	log.Debug("search finished", "pattern", pattern, "matches", len(matches))

	if jsonOut {
		if matches == nil {
			matches = []findMatch{}
		}
		return printJSON(matches)
	}

	if len(matches) == 0 {
		printInfo("No matches for %s\n", pattern)
		return nil
	}
	for _, m := range matches {
		name := m.Name
		if m.Kind == dtb.ItemBeginNode.String() && name == "" {
			name = "/"
		}
		if m.Value != "" {
			printInfo("0x%08x  %-10s  %s = %s\n", m.NextOffset, m.Kind, name, m.Value)
		} else {
			printInfo("0x%08x  %-10s  %s\n", m.NextOffset, m.Kind, name)
		}
	}
	return nil
}
