package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ProviderConfig enables and points one catalog provider. Type selects
// the adapter: "yts", "archive", "dataset" or "indexsite".
type ProviderConfig struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Enabled bool   `json:"enabled"`
}

// MetadataConfig holds the two metadata source endpoints and keys.
type MetadataConfig struct {
	OMDBAPIKey  string `json:"omdbApiKey"`
	OMDBBaseURL string `json:"omdbBaseUrl,omitempty"`
	TMDBAPIKey  string `json:"tmdbApiKey"`
	TMDBBaseURL string `json:"tmdbBaseUrl,omitempty"`
}

// Settings is the full persisted configuration.
type Settings struct {
	ListenAddr string           `json:"listenAddr"`
	DataDir    string           `json:"dataDir"`
	LogFile    string           `json:"logFile,omitempty"`
	Providers  []ProviderConfig `json:"providers"`
	Metadata   MetadataConfig   `json:"metadata"`
}

// DefaultSettings returns the configuration used when no settings file
// exists yet.
func DefaultSettings() Settings {
	return Settings{
		ListenAddr: ":8280",
		DataDir:    "./data",
		Providers: []ProviderConfig{
			{Name: "yts", Type: "yts", Enabled: true},
			{Name: "archive", Type: "archive", Enabled: true},
		},
	}
}

// Manager loads and saves the JSON settings file. Saves are atomic
// (tmp file + rename) so readers never observe a torn write.
type Manager struct {
	mu   sync.RWMutex
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings file, falling back to defaults when it does not
// exist yet.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings file atomically.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
