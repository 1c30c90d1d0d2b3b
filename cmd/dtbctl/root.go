package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/mmfile"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "dtbctl",
	Short: "Inspect and build flattened device tree blobs",
	Long: `dtbctl is a tool for inspecting, querying, validating and building
flattened device tree (.dtb) files. It decodes blobs in place without
copying them and can round-trip a tree through an editable YAML form.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit diagnostic logs as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger from the global flags. Logs go to
// stderr so they never mix with command output.
func newLogger(w io.Writer) *slog.Logger {
	if quiet || !verbose {
		return slog.New(slog.DiscardHandler)
	}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if logJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openBlob maps path and decodes its header. The returned function unmaps
// the file; the Reader must not be used afterwards.
func openBlob(path string, mode dtb.ValidationMode, log *slog.Logger) (dtb.Reader, []byte, func() error, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return dtb.Reader{}, nil, nil, fmt.Errorf("failed to open blob: %w", err)
	}
	log.Debug("mapped blob", "path", path, "size", len(data))

	r, err := dtb.NewWithOptions(data, dtb.Options{Validation: mode, Logger: log})
	if err != nil {
		_ = unmap()
		return dtb.Reader{}, nil, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return r, data, unmap, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
