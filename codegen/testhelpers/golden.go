// Package testhelpers provides shared test utilities for the pipeline's
// emitter packages.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/writer"
)

// FindFile locates an emitted writer.File by its pre-substitution name
// (which may still carry the writer.NamespacePlaceholder token).
func FindFile(files []*writer.File, name string) *writer.File {
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// RequireFile locates an emitted writer.File by name or fails the test.
func RequireFile(t *testing.T, files []*writer.File, name string) *writer.File {
	t.Helper()
	f := FindFile(files, name)
	require.NotNilf(t, f, "emitted file not found: %s", name)
	return f
}
