package config

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultEnvFile = ".env"

// FindEnvFile resolves name against the working directory and each of its
// parents, returning the first existing path. An absolute name is only checked
// as is. An empty name means .env.
func FindEnvFile(name string) (string, error) {
	if name == "" {
		name = defaultEnvFile
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
