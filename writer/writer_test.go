package writer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/writer"
)

func TestWriteSubstitutesNamespaceAndBanner(t *testing.T) {
	dir := t.TempDir()
	files := []*writer.File{
		{Name: writer.TypeModelFileName(), Content: "namespace BUFFI_NAMESPACE { struct Foo {}; }\n"},
		{Name: writer.APIFunctionsFileName("api"), Content: "extern \"C\" void buffi_free_byte_buffer(uint8_t*, size_t);\n"},
	}

	require.NoError(t, writer.Write(dir, "demo", files))

	typeModel, err := os.ReadFile(filepath.Join(dir, "demo.hpp"))
	require.NoError(t, err)
	require.Contains(t, string(typeModel), "namespace demo {")
	require.Contains(t, string(typeModel), "Code generated by buffi")

	apiFns, err := os.ReadFile(filepath.Join(dir, "api_api_functions.hpp"))
	require.NoError(t, err)
	require.Contains(t, string(apiFns), "buffi_free_byte_buffer")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, filepath.Ext(e.Name()) == ".buffi-tmp", "no staged temp file should remain: %s", e.Name())
	}
}

func TestWriteLeavesDirUntouchedOnFailure(t *testing.T) {
	dir := t.TempDir()
	// Pre-create a directory where a file wants to land, forcing the
	// rename step to fail after staging succeeds.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "api_api_functions.hpp"), 0o755))

	files := []*writer.File{
		{Name: writer.APIFunctionsFileName("api"), Content: "whatever"},
	}
	err := writer.Write(dir, "demo", files)
	require.Error(t, err)

	entries, err2 := os.ReadDir(dir)
	require.NoError(t, err2)
	require.Len(t, entries, 1) // only the pre-created directory remains
}
