package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/kanban/internal/config"
)

// CheckExisting returns an error if dir already holds a kanban.yml.
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, config.DefaultPath)); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'kanban init --force' to overwrite the configuration", config.DefaultPath)
	}
	return nil
}
