// Package textutil sanitizes clip titles and identifiers for use in file
// names.
package textutil
