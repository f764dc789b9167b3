package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.json"

// DownloadConfig is the registry configuration stored at the index root. The
// dl endpoint may contain the markers {crate}, {version}, {prefix}, and
// {lowerprefix}; when none are present, the standard
// /{crate}/{version}/download suffix applies.
type DownloadConfig struct {
	DL  string `json:"dl"`
	API string `json:"api,omitempty"`
}

// Config reads and validates the index's config.json.
func (ix *Index) Config() (*DownloadConfig, error) {
	b, err := os.ReadFile(filepath.Join(ix.root, configFileName))
	if err != nil {
		return nil, fmt.Errorf("read index config: %w", err)
	}
	var cfg DownloadConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse index config: %w", err)
	}
	if strings.TrimSpace(cfg.DL) == "" {
		return nil, errors.New("index config declares no dl endpoint")
	}
	return &cfg, nil
}

var dlMarkers = []string{"{crate}", "{version}", "{prefix}", "{lowerprefix}"}

// DownloadURL resolves the download URL for one crate version.
func (c *DownloadConfig) DownloadURL(name, version string) (string, error) {
	if c == nil || strings.TrimSpace(c.DL) == "" {
		return "", errors.New("no dl endpoint configured")
	}
	if name == "" || version == "" {
		return "", fmt.Errorf("incomplete crate identifier %q-%q", name, version)
	}

	templated := false
	for _, marker := range dlMarkers {
		if strings.Contains(c.DL, marker) {
			templated = true
			break
		}
	}
	if !templated {
		return c.DL + "/" + name + "/" + version + "/download", nil
	}

	url := c.DL
	pfx := prefix(name)
	url = strings.ReplaceAll(url, "{crate}", name)
	url = strings.ReplaceAll(url, "{version}", version)
	url = strings.ReplaceAll(url, "{prefix}", pfx)
	url = strings.ReplaceAll(url, "{lowerprefix}", strings.ToLower(pfx))
	return url, nil
}

// prefix returns the index directory prefix for a crate name: "1", "2", and
// "3/<first char>" for short names, otherwise the first two characters
// followed by the next two.
func prefix(name string) string {
	switch len(name) {
	case 0:
		return ""
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3/" + name[:1]
	default:
		return name[:2] + "/" + name[2:4]
	}
}
