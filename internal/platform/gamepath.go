package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// AutoDetectGamePath probes the platform's known Steam library locations for
// a Stardew Valley install and returns the first valid one, or "" if none.
func AutoDetectGamePath() string {
	for _, path := range steamGamePaths() {
		if ValidateGamePath(path) {
			return path
		}
	}
	return ""
}

// steamGamePaths returns platform-specific Steam installation candidates.
func steamGamePaths() []string {
	var paths []string

	switch runtime.GOOS {
	case OSWindows:
		paths = append(paths,
			`C:\Program Files (x86)\Steam\steamapps\common\Stardew Valley`,
			`C:\Program Files\Steam\steamapps\common\Stardew Valley`,
		)
	case OSLinux:
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths,
				filepath.Join(home, ".local/share/Steam/steamapps/common/Stardew Valley"),
				filepath.Join(home, ".steam/steam/steamapps/common/Stardew Valley"),
				// Flatpak Steam
				filepath.Join(home, ".var/app/com.valvesoftware.Steam/.local/share/Steam/steamapps/common/Stardew Valley"),
			)
		}
	case OSDarwin:
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths,
				filepath.Join(home, "Library/Application Support/Steam/steamapps/common/Stardew Valley"),
			)
		}
	}

	return paths
}

// ValidateGamePath reports whether path looks like a Stardew Valley install.
func ValidateGamePath(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	markers := []string{"Stardew Valley.deps.json"}
	if runtime.GOOS == OSWindows {
		markers = append(markers, "StardewValley.exe")
	} else {
		markers = append(markers, "Stardew Valley")
	}

	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}
	return false
}

// DetectSMAPIPath locates the SMAPI launcher inside a game install, or ""
// when SMAPI is not present.
func DetectSMAPIPath(gamePath string) string {
	var candidate string

	switch runtime.GOOS {
	case OSWindows:
		candidate = filepath.Join(gamePath, "StardewModdingAPI.exe")
	case OSDarwin:
		candidate = filepath.Join(gamePath, "Contents/MacOS/StardewModdingAPI")
	default:
		candidate = filepath.Join(gamePath, "StardewModdingAPI")
	}

	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
