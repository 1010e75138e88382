package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	fileValues     map[string]string
	fileValuesLock sync.RWMutex
)

// LoadFile reads a flat YAML document of VARIABLE: value pairs. Its values are
// used when the matching environment variable is unset.
// An empty path or a file that does not exist leaves the defaults in place.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("[config LoadFile] parse %s: %w", path, err)
	}

	fileValuesLock.Lock()
	fileValues = values
	fileValuesLock.Unlock()
	return nil
}

// ResetFile forgets any values loaded by LoadFile.
func ResetFile() {
	fileValuesLock.Lock()
	fileValues = nil
	fileValuesLock.Unlock()
}

func fileValue(key string) (string, bool) {
	fileValuesLock.RLock()
	defer fileValuesLock.RUnlock()
	v, ok := fileValues[key]
	return v, ok
}
