package schema

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spyglass-tools/spyglass/internal/log"
)

// Store holds compiled layouts keyed by symbolic message name and
// version. Populated once at startup; read-only afterwards.
type Store struct {
	layouts map[string]map[int][]FieldDescriptor
}

func NewStore() *Store {
	return &Store{layouts: make(map[string]map[int][]FieldDescriptor)}
}

// Load compiles every schema file in dir. File names encode identity as
// `<SymbolicName>.<version>.<ext>`; a missing or unparseable version
// defaults to 1. Registering the same (name, version) twice keeps the
// later file. A missing directory is logged and leaves the store empty.
func (s *Store) Load(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.GetLogger().WithError(err).Warnf("schema directory %s not loaded", dir)
		return
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version := splitSchemaName(entry.Name())
		if name == "" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.GetLogger().WithError(err).Warnf("schema file %s skipped", entry.Name())
			continue
		}

		s.Register(name, version, Compile(string(data)))
		count++
	}
	log.GetLogger().Infof("loaded %d schema files for %d message types from %s", count, len(s.layouts), dir)
}

// Register adds a compiled layout, overwriting any prior registration
// of the same name and version.
func (s *Store) Register(name string, version int, fields []FieldDescriptor) {
	versions, ok := s.layouts[name]
	if !ok {
		versions = make(map[int][]FieldDescriptor)
		s.layouts[name] = versions
	}
	versions[version] = fields
}

// Resolve returns the descriptor list of the numerically highest
// version registered for name, or nil if the name is unknown. Older
// versions are never merged in.
func (s *Store) Resolve(name string) []FieldDescriptor {
	versions, ok := s.layouts[name]
	if !ok || len(versions) == 0 {
		return nil
	}
	best := -1
	for v := range versions {
		if v > best {
			best = v
		}
	}
	return versions[best]
}

// Names lists every registered message name, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitSchemaName extracts the symbolic name and version from a schema
// file name of the form <name>.<version>.<ext>. Only the first dot
// delimits the name, so names themselves may not contain dots.
func splitSchemaName(filename string) (string, int) {
	parts := strings.Split(filename, ".")
	if parts[0] == "" {
		return "", 0
	}
	version := 1
	if len(parts) >= 3 {
		if v, err := strconv.Atoi(parts[1]); err == nil && v > 0 {
			version = v
		}
	}
	return parts[0], version
}
