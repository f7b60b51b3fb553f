package platform

// Package platform provides filesystem helpers shared by the pipeline
// (recursive copy, forced removal of read-only trees) and best-effort
// detection of the game installation on each OS.
