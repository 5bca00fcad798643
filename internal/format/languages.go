package format

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// languageEntry is one entry of the embedded language table.
type languageEntry struct {
	Extensions []string `yaml:"extensions"`
}

// loadLanguageExtensions parses the embedded language table.  The result is
// read-only process-wide state assembled once at service construction.
func loadLanguageExtensions() (map[string][]string, error) {
	data, err := dataFS.ReadFile("data/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read language table: %w", err)
	}
	var entries map[string]languageEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse language table: %w", err)
	}
	extensions := make(map[string][]string, len(entries))
	for name, entry := range entries {
		extensions[name] = entry.Extensions
	}
	return extensions, nil
}

// configFile materializes an embedded formatter config into the prefix so
// external formatters can read it, and returns its path.
func (s *Service) configFile(name string) (string, error) {
	data, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded config %s: %w", name, err)
	}
	dir := s.configDir
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path := dir + "/" + name
	if err := writeFileIfChanged(s.fs, path, data); err != nil {
		return "", err
	}
	return path, nil
}
