// Package writer implements the Writer (spec §4.7): it lays out the
// Schema and Facade Emitters' rendered content under a configured output
// directory, substitutes the namespace token, prefixes the
// generated-header banner, and commits every file only once the whole set
// has rendered without error (spec §7: "the tool writes no partial output
// on failure").
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NamespacePlaceholder is the literal token emitters bake into content and
// file names in place of a concrete namespace (spec §4.6); Write
// substitutes it for the configured namespace at commit time.
const NamespacePlaceholder = "BUFFI_NAMESPACE"

const banner = `// Code generated by buffi. DO NOT EDIT.
//
// Regenerate from the annotated source's doc dump to pick up changes.

`

// File is one emitter's fully-rendered output, pending namespace
// substitution and the atomic write pass.
type File struct {
	// Name is the bare output file name; it may itself contain
	// NamespacePlaceholder (e.g. "BUFFI_NAMESPACE.hpp").
	Name    string
	Content string
}

// Write renders every file's final path and content, stages each to a
// temporary sibling, and only renames them into place once all have
// staged successfully — so a failure while staging leaves the existing
// files in outputDir unchanged. A failed rename stops the commit pass;
// files renamed before it stay in place.
func Write(outputDir, namespaceToken string, files []*File) (err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("writer: create output dir %s: %w", outputDir, err)
	}

	type staged struct{ tmpPath, finalPath string }
	var all []staged
	defer func() {
		for _, s := range all {
			os.Remove(s.tmpPath)
		}
	}()

	for _, f := range files {
		name := strings.ReplaceAll(f.Name, NamespacePlaceholder, namespaceToken)
		content := banner + strings.ReplaceAll(f.Content, NamespacePlaceholder, namespaceToken)
		finalPath := filepath.Join(outputDir, name)
		tmpPath := finalPath + ".buffi-tmp"
		if werr := os.WriteFile(tmpPath, []byte(content), 0o644); werr != nil {
			return fmt.Errorf("writer: stage %s: %w", name, werr)
		}
		all = append(all, staged{tmpPath: tmpPath, finalPath: finalPath})
	}

	for _, s := range all {
		if rerr := os.Rename(s.tmpPath, s.finalPath); rerr != nil {
			return fmt.Errorf("writer: commit %s: %w", s.finalPath, rerr)
		}
	}
	return nil
}

// ClientFileName is the deterministic per-client-type file name (spec §4.7):
// "<api>_<client_snake>.hpp".
func ClientFileName(apiBasename, clientSnake string) string {
	return apiBasename + "_" + clientSnake + ".hpp"
}

// APIFunctionsFileName is "<api>_api_functions.hpp".
func APIFunctionsFileName(apiBasename string) string {
	return apiBasename + "_api_functions.hpp"
}

// FreeStandingFileName is "<api>_free_standing_functions.hpp".
func FreeStandingFileName(apiBasename string) string {
	return apiBasename + "_free_standing_functions.hpp"
}

// TypeModelFileName is "<namespace>.hpp", deferring namespace substitution
// to Write.
func TypeModelFileName() string {
	return NamespacePlaceholder + ".hpp"
}
