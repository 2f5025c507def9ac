// Package describe renders decoded field maps into human-readable
// message summaries using per-message templates.
package describe

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spyglass-tools/spyglass/internal/decode"
	"github.com/spyglass-tools/spyglass/internal/log"
)

// Description drives the formatting of one message type.
type Description struct {
	Description string   `yaml:"description"`
	Fields      []string `yaml:"fields"`
	Format      string   `yaml:"format"`
	Enabled     *bool    `yaml:"enabled,omitempty"`

	tokens []templateToken
}

func (d *Description) enabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Rendered is the formatter output for one message.
type Rendered struct {
	Description string
	Text        string
}

// Store holds packet descriptions keyed by symbolic message name.
// Enable/disable toggles mutate at runtime and persist back to the
// source file; everything else is load-time state.
type Store struct {
	mu    sync.Mutex
	path  string
	descs map[string]*Description
}

func NewStore() *Store {
	return &Store{descs: make(map[string]*Description)}
}

// Load reads the YAML description file. When the file is absent a
// small built-in default set is installed and written back so users
// have a file to edit. Malformed files are logged and leave the store
// empty; formatting simply degrades to undecorated output.
func (s *Store) Load(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.GetLogger().Infof("description file %s missing, writing defaults", path)
		s.descs = defaultDescriptions()
		s.compileAll()
		s.saveLocked()
		return
	}
	if err != nil {
		log.GetLogger().WithError(err).Warnf("description file %s not loaded", path)
		return
	}

	descs := make(map[string]*Description)
	if err := yaml.Unmarshal(data, &descs); err != nil {
		log.GetLogger().WithError(err).Warnf("description file %s malformed", path)
		return
	}
	s.descs = descs
	s.compileAll()
	log.GetLogger().Infof("loaded %d packet descriptions from %s", len(descs), path)
}

func (s *Store) compileAll() {
	for _, d := range s.descs {
		d.tokens = compileTemplate(d.Format)
	}
}

// Describe renders the decoded fields of name through its template.
// It returns false when no description is registered or the entry is
// disabled. Every decoded field is available to the template, not only
// the declared fields of interest. A decoded vec3 named "loc" is
// rewritten to "(x, y, z)" with two-decimal coordinates before
// substitution.
func (s *Store) Describe(name string, fields decode.Fields) (Rendered, bool) {
	s.mu.Lock()
	d, ok := s.descs[name]
	if ok {
		ok = d.enabled()
	}
	s.mu.Unlock()
	if !ok {
		return Rendered{}, false
	}

	values := make(map[string]string, len(fields))
	for k, v := range fields {
		values[k] = stringify(v)
	}
	if loc, ok := fields["loc"].(decode.Vec3); ok {
		values["loc"] = fmt.Sprintf("(%.2f, %.2f, %.2f)", loc.X, loc.Y, loc.Z)
	}

	return Rendered{
		Description: d.Description,
		Text:        render(d.tokens, values),
	}, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case decode.Vec3:
		return fmt.Sprintf("(%.2f, %.2f, %.2f)", t.X, t.Y, t.Z)
	default:
		return fmt.Sprint(v)
	}
}

// Toggle flips the enabled flag of one description and persists the
// change. Unknown names report false.
func (s *Store) Toggle(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.descs[name]
	if !ok {
		return false, fmt.Errorf("no description for %s", name)
	}
	next := !d.enabled()
	d.Enabled = &next
	return next, s.saveLocked()
}

// Entry is a listing row for the control surface.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// List returns all descriptions sorted by name.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.descs))
	for name, d := range s.descs {
		out = append(out, Entry{Name: name, Description: d.Description, Enabled: d.enabled()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.descs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.GetLogger().WithError(err).Warnf("description file %s not saved", s.path)
		return err
	}
	return nil
}

// defaultDescriptions is the built-in set installed on first run.
func defaultDescriptions() map[string]*Description {
	return map[string]*Description{
		"OP_SpawnNPC": {
			Description: "Server spawns an NPC near the client",
			Fields:      []string{"gameId", "loc", "aggressive"},
			Format:      "NPC {gameId} at {loc} (aggressive: {aggressive})",
		},
		"OP_ChatMessage": {
			Description: "Chat text routed to the client",
			Fields:      []string{"channel", "sender", "text"},
			Format:      "[{channel}] {sender}: {text}",
		},
		"OP_ClientUpdate": {
			Description: "Client position/heading update",
			Fields:      []string{"gameId", "loc", "heading"},
			Format:      "entity {gameId} moved to {loc} heading {heading}",
		},
	}
}
