package snakelib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/valyala/fastjson"

	"github.com/Icarogamer2441/snake/internal/lower"
)

// Installed describes one installed library found under a root.
type Installed struct {
	Name        string
	Version     string
	Dir         string
	InstallDate time.Time
	Size        uint64 // total bytes of .sk sources
}

// List enumerates the libraries installed under the given roots, in the
// roots' probe order and alphabetically within each root. A directory without
// a readable metadata file is skipped.
func List(roots []string) ([]Installed, error) {
	var out []Installed
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		var libs []Installed
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(root, e.Name())
			lib, ok := readInstalled(dir)
			if !ok {
				continue
			}
			libs = append(libs, lib)
		}
		sort.Slice(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
		out = append(out, libs...)
	}
	return out, nil
}

func readInstalled(dir string) (Installed, bool) {
	data, err := os.ReadFile(filepath.Join(dir, lower.LibraryMetadataFile))
	if err != nil {
		return Installed{}, false
	}
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return Installed{}, false
	}

	lib := Installed{
		Name:    string(v.GetStringBytes("name")),
		Version: string(v.GetStringBytes("version")),
		Dir:     dir,
	}
	if lib.Name == "" {
		lib.Name = filepath.Base(dir)
	}
	if ts := string(v.GetStringBytes("install_date")); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			lib.InstallDate = t
		}
	}

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(path) == ".sk" {
			lib.Size += uint64(info.Size())
		}
		return nil
	})
	return lib, true
}

// String renders one listing line with a humanized install age and size.
func (l Installed) String() string {
	age := "unknown age"
	if !l.InstallDate.IsZero() {
		age = humanize.Time(l.InstallDate)
	}
	version := l.Version
	if version == "" {
		version = "?"
	}
	return fmt.Sprintf("%s v%s  (%s, installed %s)", l.Name, version, humanize.Bytes(l.Size), age)
}
