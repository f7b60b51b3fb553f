package model

// Package model defines domain data structures used across the app: download
// tasks, progress snapshots, mod manifests, and installed-mod records.
// Structures carry JSON tags matching the payloads emitted to frontends and
// explicit state transitions.
