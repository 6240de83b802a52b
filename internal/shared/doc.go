// Package shared provides common utilities used across the pipeline
// that don't belong to any specific domain layer.
//
// The testutil subpackage holds test helpers, currently a capturing
// slog handler for asserting on log output.
package shared
