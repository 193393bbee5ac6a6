// Package credentials loads API tokens for project sources from standard
// locations.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInsecurePermissions is returned when credentials file has overly permissive permissions.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Credentials holds tokens loaded from credentials.toml, one section per
// project source:
//
//	[github]
//	api_key = "ghp_..."
type Credentials struct {
	sources map[string]string
}

// StandardPaths returns the standard credential file locations in order of priority
func StandardPaths() []string {
	paths := []string{"credentials.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resumekit", "credentials.toml"))
	}
	return paths
}

// Load loads credentials from the first available standard location.
// No file is not an error; the returned Credentials then only consults the
// environment.
func Load() (*Credentials, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			creds, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return creds, path, nil
		}
	}
	return &Credentials{}, "", nil
}

// LoadFile loads credentials from a specific file.
// Returns ErrInsecurePermissions if file is readable by group or others.
func LoadFile(path string) (*Credentials, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := info.Mode().Perm()
		// Credentials must be 0400 (owner read-only)
		if mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	var raw map[string]struct {
		APIKey string `toml:"api_key"`
	}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}

	creds := &Credentials{sources: make(map[string]string)}
	for name, section := range raw {
		if section.APIKey != "" {
			creds.sources[normalize(name)] = section.APIKey
		}
	}
	return creds, nil
}

// Token returns the token for a project source.
// Priority: [source] section > environment variable.
func (c *Credentials) Token(source string) string {
	if c != nil {
		if tok, ok := c.sources[normalize(source)]; ok {
			return tok
		}
	}
	return os.Getenv(EnvVar(source))
}

// EnvVar returns the environment variable consulted for a source's token.
func EnvVar(source string) string {
	switch normalize(source) {
	case "github":
		return "GITHUB_TOKEN"
	default:
		return strings.ToUpper(strings.ReplaceAll(source, "-", "_")) + "_TOKEN"
	}
}

func normalize(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}
