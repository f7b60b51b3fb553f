package installer

import "github.com/hrmshandy/treasure-chest/internal/model"

// Installer defines the interface for the install orchestrator.
type Installer interface {
	InstallFromArchive(archivePath, modsRoot string, policy Policy, prov *Provenance) (*model.InstallRecord, error)
}
