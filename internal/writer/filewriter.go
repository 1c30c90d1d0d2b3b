// Package writer exposes sinks for blob emission.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes blob bytes to a filesystem path atomically.
type FileWriter struct {
	Path string
	// Mode is the permission of the created file. Zero selects 0o644.
	Mode os.FileMode
}

// WriteBlob writes buf to the configured path atomically via temp file + rename.
func (w *FileWriter) WriteBlob(buf []byte) error {
	if w.Path == "" {
		return fmt.Errorf("write blob: empty path")
	}
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".dtbkit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	mode := w.Mode
	if mode == 0 {
		mode = 0o644
	}
	if chmodErr := tmpFile.Chmod(mode); chmodErr != nil {
		return fmt.Errorf("chmod temp file: %w", chmodErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}
	return nil
}
