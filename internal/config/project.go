package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is looked up in the directory of each compiled file and
// its ancestors.
const ProjectFileName = "forge.yaml"

// Project is the per-project configuration.
type Project struct {
	// PointerBits sizes isize/usize and pointer-width integer casts.
	PointerBits uint `yaml:"pointer_bits"`
	// Backend selects what happens after codegen: "emit" or "jit".
	Backend string `yaml:"backend"`
	// Cache toggles the on-disk build cache.
	Cache bool `yaml:"cache"`
	// CacheDir overrides where the build cache lives.
	CacheDir string `yaml:"cache_dir"`
	// WarningsAsErrors promotes warnings when deciding the exit code.
	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

// DefaultProject matches a host without a forge.yaml.
func DefaultProject() Project {
	return Project{
		PointerBits: 64,
		Backend:     "emit",
		Cache:       true,
	}
}

// LoadProject reads forge.yaml from dir or the nearest ancestor holding
// one. A missing file yields the defaults.
func LoadProject(dir string) (Project, error) {
	project := DefaultProject()

	path, err := findProjectFile(dir)
	if err != nil {
		return project, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return project, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &project); err != nil {
		return project, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	switch project.PointerBits {
	case 0:
		project.PointerBits = 64
	case 32, 64:
	default:
		return project, fmt.Errorf("config: pointer_bits must be 32 or 64, got %d", project.PointerBits)
	}

	if project.Backend == "" {
		project.Backend = "emit"
	}

	return project, nil
}

func findProjectFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fs.ErrNotExist
		}
		dir = parent
	}
}
