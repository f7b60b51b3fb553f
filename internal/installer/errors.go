package installer

import "errors"

// Install failures are classified so callers can report them precisely.
// None of them are retried automatically.
var (
	ErrExtractionFailed   = errors.New("archive extraction failed")
	ErrManifestNotFound   = errors.New("manifest not found")
	ErrInvalidManifest    = errors.New("invalid manifest")
	ErrInstallationFailed = errors.New("installation failed")
	ErrIO                 = errors.New("io error")
)
