package config

// Package config manages application settings. Settings live in a JSON (or
// YAML) file under the user config directory; a missing file yields defaults.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hrmshandy/treasure-chest/internal/platform"
)

// AppDirName is the directory under the user config dir holding settings,
// backups and scratch space.
const AppDirName = "treasure-chest"

// SettingsFileName is the default settings file name.
const SettingsFileName = "settings.json"

// Default values
const (
	DefaultMaxConcurrentDownloads = 1
	MaxConcurrentDownloadsLimit   = 10
)

// DefaultCoreFrameworks are shared-dependency mods segregated into the
// _Frameworks subfolder instead of the general mods folder.
var DefaultCoreFrameworks = []string{
	"ContentPatcher",
	"SpaceCore",
	"JsonAssets",
	"GenericModConfigMenu",
}

// Settings holds the persisted application configuration.
type Settings struct {
	GamePath               string   `json:"gamePath" yaml:"gamePath"`
	SMAPIPath              string   `json:"smapiPath" yaml:"smapiPath"`
	DownloadDir            string   `json:"downloadDir" yaml:"downloadDir"`
	NexusAPIKey            string   `json:"nexusApiKey" yaml:"nexusApiKey"`
	MaxConcurrentDownloads int      `json:"maxConcurrentDownloads" yaml:"maxConcurrentDownloads"`
	AutoInstall            bool     `json:"autoInstall" yaml:"autoInstall"`
	ConfirmBeforeInstall   bool     `json:"confirmBeforeInstall" yaml:"confirmBeforeInstall"`
	DeleteAfterInstall     bool     `json:"deleteAfterInstall" yaml:"deleteAfterInstall"`
	CoreFrameworks         []string `json:"coreFrameworks" yaml:"coreFrameworks"`
}

// Default returns settings with every field at its default. The game path is
// auto-detected when possible.
func Default() *Settings {
	s := &Settings{
		GamePath:               platform.AutoDetectGamePath(),
		MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
		AutoInstall:            true,
		ConfirmBeforeInstall:   false,
		DeleteAfterInstall:     false,
		CoreFrameworks:         append([]string(nil), DefaultCoreFrameworks...),
	}
	if s.GamePath != "" {
		s.SMAPIPath = platform.DetectSMAPIPath(s.GamePath)
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.DownloadDir = filepath.Join(home, "Downloads", AppDirName)
	}
	return s
}

// AppDir returns the application data directory under the user config dir.
func AppDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// DefaultPath returns the default settings file path.
func DefaultPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// Load reads settings from path. An empty path means the default location; a
// missing file yields Default() without error.
func Load(path string) (*Settings, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Default()
	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.clamp()
	return s, nil
}

// Save writes settings to path (default location when empty), creating parent
// directories as needed.
func (s *Settings) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), platform.DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := os.WriteFile(path, data, platform.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ModsDir returns the game's Mods directory, or "" when no game path is set.
func (s *Settings) ModsDir() string {
	if s.GamePath == "" {
		return ""
	}
	return filepath.Join(s.GamePath, "Mods")
}

// IsFramework reports whether name belongs to the configured framework set.
func (s *Settings) IsFramework(name string) bool {
	for _, f := range s.CoreFrameworks {
		if f == name {
			return true
		}
	}
	return false
}

// clamp keeps numeric settings inside their operational bounds.
func (s *Settings) clamp() {
	if s.MaxConcurrentDownloads < 1 {
		s.MaxConcurrentDownloads = DefaultMaxConcurrentDownloads
	}
	if s.MaxConcurrentDownloads > MaxConcurrentDownloadsLimit {
		s.MaxConcurrentDownloads = MaxConcurrentDownloadsLimit
	}
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
