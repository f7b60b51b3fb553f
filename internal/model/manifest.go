package model

// ModManifest is a SMAPI mod descriptor parsed from manifest.json.
// Name, Version and UniqueID are required; everything else is optional.
type ModManifest struct {
	Name           string           `json:"Name"`
	Author         string           `json:"Author"`
	Version        string           `json:"Version"`
	UniqueID       string           `json:"UniqueID"`
	Description    string           `json:"Description,omitempty"`
	Dependencies   []ModDependency  `json:"Dependencies,omitempty"`
	ContentPackFor *ContentPackInfo `json:"ContentPackFor,omitempty"`
}

// ModDependency names another mod this one depends on.
type ModDependency struct {
	UniqueID   string `json:"UniqueID"`
	IsRequired *bool  `json:"IsRequired,omitempty"`
}

// ContentPackInfo identifies the framework a content pack targets.
type ContentPackInfo struct {
	UniqueID string `json:"UniqueID"`
}

// Mod is an installed mod discovered by scanning the mods directory.
type Mod struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Author         string           `json:"author"`
	Version        string           `json:"version"`
	UniqueID       string           `json:"uniqueId"`
	Description    string           `json:"description,omitempty"`
	Dependencies   []ModDependency  `json:"dependencies,omitempty"`
	ContentPackFor *ContentPackInfo `json:"contentPackFor,omitempty"`
	Path           string           `json:"path"`
	IsEnabled      bool             `json:"isEnabled"`

	// Provenance recovered from the hidden sidecar file; zero when unknown.
	NexusModID  int64 `json:"nexusModId,omitempty"`
	NexusFileID int64 `json:"nexusFileId,omitempty"`
}

// InstallRecord is produced only on install success.
type InstallRecord struct {
	ModName     string `json:"modName"`
	Version     string `json:"version"`
	UniqueID    string `json:"uniqueId"`
	InstallPath string `json:"installPath"`
}
