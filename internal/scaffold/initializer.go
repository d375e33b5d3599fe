package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// StoreDir is the directory holding the local sqlite store.
const StoreDir = ".kanban"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes kanban.yml and the local store directory into dir.
// With force, an existing kanban.yml is replaced; the store itself is never
// touched.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, StoreDir), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", StoreDir, err)
	}

	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

// getTemplateFiles reads the embedded templates and maps them to their
// destination paths under dir.
func getTemplateFiles(dir string) ([]FileInfo, error) {
	targets := []struct {
		template string
		path     string
	}{
		{"templates/kanban.yml.tmpl", config.DefaultPath},
		{"templates/gitignore.tmpl", filepath.Join(StoreDir, ".gitignore")},
	}

	files := make([]FileInfo, 0, len(targets))
	for _, tgt := range targets {
		content, err := templatesFS.ReadFile(tgt.template)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", filepath.Base(tgt.path), err)
		}
		files = append(files, FileInfo{
			Path:        filepath.Join(dir, tgt.path),
			Content:     content,
			Permissions: 0644,
		})
	}
	return files, nil
}

// validateCreatedFiles loads the written kanban.yml through the real config
// loader so a broken template is caught at init time.
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, config.DefaultPath)); err != nil {
		return fmt.Errorf("created %s is not valid: %w", config.DefaultPath, err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	printer.Success("Initialized kanban project\n")
	printer.Println("\nCreated:")
	printer.Println("  ✓ " + config.DefaultPath)
	printer.Println("  ✓ " + StoreDir + "/")
	printer.Println("\nNext steps:")
	printer.Println("  1. Run 'kanban board show' to see the demo board")
	printer.Println("  2. Add columns with 'kanban column add NAME'")
	printer.Println("  3. Edit " + config.DefaultPath + " to switch the store to Redis")
}
