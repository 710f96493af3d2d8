// Package naming contains shared naming helpers used by the buffi pipeline
// and its CLI.
//
// The functions in this package centralize identifier sanitization and
// related naming conventions; the doc cache builds its Redis key prefix
// with KeyName.
package naming
