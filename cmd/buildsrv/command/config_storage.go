package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-mudbuild/internal/storage"
)

type StorageConfig struct {
	Path string `json:"path"`
}

func (c *StorageConfig) validate() error {
	if c.Path == "" {
		return fmt.Errorf("storage: path is required")
	}
	fi, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("storage: invalid path %q: %w", c.Path, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("storage: path %q is not a directory", c.Path)
	}

	return nil
}

func (c *StorageConfig) buildStore() (*storage.PropertyStore, error) {
	return storage.NewPropertyStore(c.Path)
}
