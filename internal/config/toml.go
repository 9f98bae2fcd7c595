package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the conventional per-repository config file, looked up in the
// data root. Flags and environment variables take precedence over it.
const FileName = "n8nsync.toml"

// FileConfig holds non-secret defaults tracked alongside the data files.
type FileConfig struct {
	Target TargetSection `toml:"target"`
	Import ImportSection `toml:"import"`
	Export ExportSection `toml:"export"`
}

type TargetSection struct {
	BaseURL string `toml:"base_url"`
}

type ImportSection struct {
	MinWorkflows      int `toml:"min_workflows"`
	MinCredentials    int `toml:"min_credentials"`
	WaitReadySeconds  int `toml:"wait_ready_seconds"`
	ReadyIntervalSecs int `toml:"ready_interval_seconds"`
}

type ExportSection struct {
	Prune bool `toml:"prune"`
}

// LoadFile loads the file config from dir. A missing file is not an error;
// it yields zero-value defaults.
func LoadFile(dir string) (*FileConfig, error) {
	cfg := &FileConfig{}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := LoadTOML(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveFile writes the file config into dir.
func SaveFile(dir string, cfg *FileConfig) error {
	return SaveTOML(filepath.Join(dir, FileName), cfg)
}

// SaveTOML saves a struct to a TOML file.
func SaveTOML(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(data)
}

// LoadTOML loads a TOML file into a struct.
func LoadTOML(filePath string, data interface{}) error {
	_, err := toml.DecodeFile(filePath, data)
	return err
}
