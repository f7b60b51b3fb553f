package installer

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hrmshandy/treasure-chest/internal/model"
)

// ScanMods walks modsRoot recursively and returns every installed mod. A
// directory containing a manifest.json is a mod; directories without one
// (such as the frameworks subfolder) are descended into. A missing or empty
// mods root yields an empty list.
func ScanMods(modsRoot string) ([]model.Mod, error) {
	if _, err := os.Stat(modsRoot); os.IsNotExist(err) {
		return nil, nil
	}

	var mods []model.Mod
	if err := scanDir(modsRoot, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

func scanDir(dir string, mods *[]model.Mod) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		m, err := readManifest(path)
		if err != nil {
			if errors.Is(err, ErrManifestNotFound) {
				// Not a mod folder, keep looking deeper.
				if err := scanDir(path, mods); err != nil {
					return err
				}
				continue
			}
			log.Printf("Skipping %s: %v", path, err)
			continue
		}

		enabled := !strings.HasSuffix(entry.Name(), DisabledSuffix)

		mod := model.Mod{
			ID:             uuid.New().String(),
			Name:           m.Name,
			Author:         m.Author,
			Version:        m.Version,
			UniqueID:       m.UniqueID,
			Description:    m.Description,
			Dependencies:   m.Dependencies,
			ContentPackFor: m.ContentPackFor,
			Path:           path,
			IsEnabled:      enabled,
		}

		if prov, err := readSidecar(path); err == nil {
			mod.NexusModID = prov.ModID
			mod.NexusFileID = prov.FileID
		}

		*mods = append(*mods, mod)
	}

	return nil
}
