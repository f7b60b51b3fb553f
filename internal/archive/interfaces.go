package archive

// Extractor defines the interface for the archive extraction service.
type Extractor interface {
	Extract(archivePath, destDir string) error
}
