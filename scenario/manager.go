package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samaelod/enlil/config"
	"github.com/samaelod/enlil/types"
)

// SaveToRecent snapshots a loaded scenario into the 'recent' directory so a
// session can be replayed later even if the original file changes. The copy
// keeps the original filename as a base with an incrementing suffix; the
// path to the new file is returned.
func SaveToRecent(sc *types.Scenario, originalPath string) (string, error) {
	appConfig, err := config.LoadDefault()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	recentDir := appConfig.RecentDir
	if recentDir == "" {
		recentDir = "recent"
	}

	if err := os.MkdirAll(recentDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recent directory: %w", err)
	}

	baseName := filepath.Base(originalPath)
	ext := filepath.Ext(baseName)
	nameWithoutExt := strings.TrimSuffix(baseName, ext)

	// Find a free name: name_1.lua, name_2.lua, ...
	counter := 1
	var newPath string
	for {
		newFilename := fmt.Sprintf("%s_%d.lua", nameWithoutExt, counter)
		newPath = filepath.Join(recentDir, newFilename)

		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			break
		}
		counter++
	}

	f, err := os.Create(newPath)
	if err != nil {
		return "", fmt.Errorf("failed to create scenario file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(originalPath, ".lua") {
		// Copy the source directly to preserve comments and layout
		src, err := os.Open(originalPath)
		if err != nil {
			return "", fmt.Errorf("failed to open source scenario: %w", err)
		}
		defer src.Close()

		if _, err := io.Copy(f, src); err != nil {
			return "", fmt.Errorf("failed to copy scenario: %w", err)
		}
	} else {
		if err := WriteScenario(f, sc); err != nil {
			return "", fmt.Errorf("failed to write scenario: %w", err)
		}
	}

	return newPath, nil
}
