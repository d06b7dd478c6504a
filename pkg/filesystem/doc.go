// Package filesystem provides the concrete implementations of types.FS:
// a thin OS-backed one for production and an afero-backed one for tests.
package filesystem
