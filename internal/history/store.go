package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Path returns the history file inside stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

// Load reads the history file. A missing file yields an empty history.
func Load(fs afero.Fs, stateDir string) (*File, error) {
	data, err := afero.ReadFile(fs, Path(stateDir))
	if errors.Is(err, os.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", Path(stateDir), err)
	}
	return &f, nil
}

// Save writes the history file through a temp file and rename.
func Save(fs afero.Fs, stateDir string, f *File) error {
	if err := fs.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	path := Path(stateDir)
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}

// Clear removes every entry.
func Clear(fs afero.Fs, stateDir string) error {
	return Save(fs, stateDir, &File{})
}
