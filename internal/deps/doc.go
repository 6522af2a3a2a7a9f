// Package deps checks the external binaries clipforge executes and the
// ffmpeg build features the pipeline relies on.
package deps
