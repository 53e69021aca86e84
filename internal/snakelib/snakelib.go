// Package snakelib builds and lists installed Snake libraries. A library is a
// directory of .sk sources under a library root, named after the library,
// with a snake_metadata.json describing what was installed. The import pass
// probes the same roots and reads the same metadata file.
package snakelib

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/Icarogamer2441/snake/internal/lower"
)

// SetupFile is the configuration file a library source tree must carry.
const SetupFile = "setup.sk"

// Setup is a parsed setup.sk. The file is a Snake source whose typed
// top-level bindings configure the build; it is scanned textually, the same
// way the signature harvester reads declared bindings.
type Setup struct {
	Name               string
	Version            *semver.Version
	Dependencies       []string
	PythonDependencies []string
	Commands           []string // to_cmd entries, resolved by the shell wrappers
}

var (
	nameRe    = regexp.MustCompile(`name\s*:\s*str\s*=\s*"([^"]+)"`)
	versionRe = regexp.MustCompile(`version\s*:\s*str\s*=\s*"([^"]+)"`)
	depsRe    = regexp.MustCompile(`(?s)dependencies\s*:\s*(?:List\[str\]|list\[str\])\s*=\s*\[(.*?)\]`)
	pyDepsRe  = regexp.MustCompile(`(?s)python_dependencies\s*:\s*(?:List\[str\]|list\[str\])\s*=\s*\[(.*?)\]`)
	toCmdRe   = regexp.MustCompile(`(?s)to_cmd\s*:\s*(?:List\[str\]|list\[str\])\s*=\s*\[(.*?)\]`)
	quotedRe  = regexp.MustCompile(`"([^"]+)"`)
)

// ParseSetup reads and scans a setup.sk. Name and version are required and
// the version must be valid semver; the list bindings are optional.
func ParseSetup(path string) (*Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SetupFile, err)
	}
	content := string(data)

	m := nameRe.FindStringSubmatch(content)
	if m == nil {
		return nil, fmt.Errorf("library name not found in %s", SetupFile)
	}
	name := m[1]

	m = versionRe.FindStringSubmatch(content)
	if m == nil {
		return nil, fmt.Errorf("library version not found in %s", SetupFile)
	}
	version, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid library version %q: %w", m[1], err)
	}

	return &Setup{
		Name:               name,
		Version:            version,
		Dependencies:       quotedList(depsRe, content),
		PythonDependencies: quotedList(pyDepsRe, content),
		Commands:           quotedList(toCmdRe, content),
	}, nil
}

// quotedList extracts the quoted strings inside a matched list binding.
func quotedList(re *regexp.Regexp, content string) []string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var out []string
	for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
		out = append(out, q[1])
	}
	return out
}

// Metadata is the snake_metadata.json written next to an installed library's
// entry file. The import pass reads python_dependencies from it; the rest
// documents the install.
type Metadata struct {
	Name               string            `json:"name"`
	Version            string            `json:"version"`
	Dependencies       []string          `json:"dependencies"`
	PythonDependencies []string          `json:"python_dependencies"`
	Commands           []string          `json:"to_cmd,omitempty"`
	InstallID          string            `json:"install_id"`
	InstallDate        time.Time         `json:"install_date"`
	Digests            map[string]string `json:"digests"`
}

// Build copies a library's .sk sources into <root>/<name>/ and writes its
// metadata. root defaults to the user-level library root. Returns the
// installed library directory.
func Build(sourceDir, root string) (string, error) {
	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	setup, err := ParseSetup(filepath.Join(sourceDir, SetupFile))
	if err != nil {
		return "", err
	}
	if root == "" {
		root = lower.DefaultLibRoots()[0]
	}
	libDir := filepath.Join(root, setup.Name)
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return "", err
	}

	digests := make(map[string]string)
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sk") || d.Name() == SetupFile {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		target := filepath.Join(libDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		sum := blake2b.Sum256(data)
		digests[filepath.ToSlash(rel)] = hex.EncodeToString(sum[:])
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("copy sources: %w", err)
	}
	if _, ok := digests[lower.LibraryEntryFile]; !ok {
		return "", fmt.Errorf("library %s has no %s", setup.Name, lower.LibraryEntryFile)
	}

	meta := Metadata{
		Name:               setup.Name,
		Version:            setup.Version.String(),
		Dependencies:       setup.Dependencies,
		PythonDependencies: setup.PythonDependencies,
		Commands:           setup.Commands,
		InstallID:          uuid.NewString(),
		InstallDate:        time.Now().UTC(),
		Digests:            digests,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(libDir, lower.LibraryMetadataFile), append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return libDir, nil
}
