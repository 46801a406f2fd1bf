package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GetDeviceName reads the name of a hwmon device
func GetDeviceName(devicePath string) string {
	namePath := filepath.Join(devicePath, "name")
	content, _ := os.ReadFile(namePath)
	return strings.TrimSpace(string(content))
}

// FindHwmonDevicePaths lists all hwmon device directories below basePath,
// sorted by device identifier so scan order is deterministic.
func FindHwmonDevicePaths(basePath string) []string {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return []string{}
	}

	var result []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		devicePath := filepath.Join(basePath, entry.Name())
		resolved, err := filepath.EvalSymlinks(devicePath)
		if err == nil {
			devicePath = resolved
		}
		info, err := os.Stat(devicePath)
		if err != nil || !info.IsDir() {
			continue
		}
		result = append(result, filepath.Join(basePath, entry.Name()))
	}
	sort.Strings(result)

	return result
}
