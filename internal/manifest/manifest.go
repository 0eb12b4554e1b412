package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"vnforge/internal/character"
)

// Manifest maps archetype → image group → sorted image file names.
type Manifest map[string]map[string][]string

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	return m, nil
}

func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Build scans root/<archetype>/<group>/ for image files.
func Build(root string) (Manifest, error) {
	return BuildFS(os.DirFS(root))
}

func BuildFS(fsys fs.FS) (Manifest, error) {
	archetypes, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading assets root: %w", err)
	}

	m := Manifest{}
	for _, archetype := range archetypes {
		if !archetype.IsDir() {
			continue
		}
		groups, err := fs.ReadDir(fsys, archetype.Name())
		if err != nil {
			return nil, fmt.Errorf("reading archetype %s: %w", archetype.Name(), err)
		}

		entry := map[string][]string{}
		for _, group := range groups {
			if !group.IsDir() {
				continue
			}
			dir := path.Join(archetype.Name(), group.Name())
			files, err := fs.ReadDir(fsys, dir)
			if err != nil {
				return nil, fmt.Errorf("reading group %s: %w", dir, err)
			}
			names := make([]string, 0, len(files))
			for _, file := range files {
				if file.IsDir() || !isImage(file.Name()) {
					continue
				}
				names = append(names, file.Name())
			}
			sort.Strings(names)
			entry[group.Name()] = names
		}
		m[archetype.Name()] = entry
	}
	return m, nil
}

func (m Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func (m Manifest) HasGroup(archetype, group string) bool {
	groups, ok := m[archetype]
	if !ok {
		return false
	}
	_, ok = groups[group]
	return ok
}

func (m Manifest) Files(archetype, group string) []string {
	return append([]string(nil), m[archetype][group]...)
}

// Group resolves the image group searched for category on archetype.
func (m Manifest) Group(catalog character.Catalog, archetype string, category character.Category, variant character.EyeVariant) string {
	return catalog.GroupFor(archetype, category, variant, func(group string) bool {
		return m.HasGroup(archetype, group)
	})
}

// Options lists the files an editor offers for category. The eye variant
// changes which group is listed; it never picks a file.
func (m Manifest) Options(catalog character.Catalog, archetype string, category character.Category, variant character.EyeVariant) []string {
	return m.Files(archetype, m.Group(catalog, archetype, category, variant))
}

// Reference returns the asset path of the file selected for category, or
// false when the spec selects nothing for it.
func (m Manifest) Reference(catalog character.Catalog, spec character.Spec, category character.Category) (string, bool) {
	file, ok := spec.Selection(category)
	if !ok {
		return "", false
	}
	group := m.Group(catalog, spec.Archetype, category, spec.Variant())
	return path.Join(spec.Archetype, group, file), true
}

func isImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(name))]
	return ok
}
