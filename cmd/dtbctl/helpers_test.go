package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/dtb/printer"
)

// testBlob encodes
//
//	/memreserve/ 0x80000000 0x1000;
//	/ {
//	    model = "acme,board";
//	    compatible = "acme,board", "acme,soc";
//	    #address-cells = <2>;
//	    memory@80000000 { reg = /bits/ 64 <0x80000000>; };
//	    cpus {
//	        cpu@0 { reg = <0>; status = "okay"; };
//	        cpu@1 { reg = <1>; status = "disabled"; };
//	    };
//	};
func testBlob(t *testing.T) []byte {
	t.Helper()
	w := dtb.NewWriter(make([]byte, 0, 1024), dtb.WriterOptions{})
	require.NoError(t, w.AddReservedMem(dtb.ReservedMemEntry{Address: 0x80000000, Size: 0x1000}))
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.PropertyString("model", "acme,board"))
	require.NoError(t, w.PropertyStrings("compatible", "acme,board", "acme,soc"))
	require.NoError(t, w.PropertyU32s("#address-cells", 2))
	require.NoError(t, w.BeginNode("memory@80000000"))
	require.NoError(t, w.PropertyU64("reg", 0x80000000))
	require.NoError(t, w.EndNode())
	require.NoError(t, w.BeginNode("cpus"))
	for i, status := range []string{"okay", "disabled"} {
		require.NoError(t, w.BeginNode("cpu@"+string(rune('0'+i))))
		require.NoError(t, w.PropertyU32s("reg", uint32(i)))
		require.NoError(t, w.PropertyString("status", status))
		require.NoError(t, w.EndNode())
	}
	require.NoError(t, w.EndNode())
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	return blob
}

// writeTestFile writes data into the test's temp dir and returns its path.
func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// testBlobPath writes testBlob to disk.
func testBlobPath(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, "board.dtb", testBlob(t))
}

// resetFlags restores every flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logJSON = false
	treeDepth = 0
	treeIndent = printer.DefaultIndentSize
	treeMaxData = printer.DefaultMaxValueBytes
	findLimit = 0
	getAs = "auto"
	buildVersion = 17
	exportOutput = ""
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
