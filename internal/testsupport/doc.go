// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs, stub binaries on PATH, sized files, and an opened history store.
package testsupport
