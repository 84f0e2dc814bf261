package config

import (
	"os"
	"path/filepath"
)

// configNames are tried, in order, inside each candidate directory.
var configNames = []string{"xstream.yaml", "xstream.yml", "xstream.json"}

// DefaultConfigPath returns the first existing config file among the
// standard locations, or "" when none exists. XSTREAM_CONFIG wins when set.
func DefaultConfigPath() string {
	if p := os.Getenv("XSTREAM_CONFIG"); p != "" {
		return p
	}
	for _, dir := range configDirs() {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if isFile(p) {
				return p
			}
		}
	}
	return ""
}

func configDirs() []string {
	dirs := []string{"."}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "xstream"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "xstream"))
	}

	// Common Linux/Unix system dir
	dirs = append(dirs, "/etc/xstream")
	return dirs
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
