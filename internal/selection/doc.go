// Package selection decides which rectangles of the source clip hold the
// webcam and the gameplay.
//
// Preset uses rectangles supplied on the command line, Prompt asks on the
// terminal after extracting a preview frame, and Command hands the preview
// frame to an external picker program. An all-zero rectangle from any of
// them cancels the run.
package selection
