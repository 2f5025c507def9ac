package filter

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spyglass-tools/spyglass/internal/log"
)

// defaultBlacklist covers the high-frequency traffic nobody wants in a
// capture log by default: movement spam, heartbeats, combat ticks.
var defaultBlacklist = []string{
	"OP_KeepAlive",
	"OP_Heartbeat",
	"OP_ClientUpdate",
	"OP_MobUpdate",
	"OP_MobHealth",
	"OP_HPUpdate",
	"OP_ManaUpdate",
	"OP_StaminaUpdate",
	"OP_TimeOfDay",
	"OP_WeatherUpdate",
	"OP_SpawnAppearance",
	"OP_Animation",
	"OP_TargetHoTT",
	"OP_Buff",
	"OP_AutoAttack",
	"OP_EnvironmentalDamage",
}

// Blacklist is the persisted list of message names that are dropped by
// default. Runtime add/remove writes straight through to the file.
type Blacklist struct {
	mu      sync.Mutex
	path    string
	entries []string
}

func NewBlacklist() *Blacklist {
	return &Blacklist{}
}

// Load reads the YAML blacklist. An absent file installs the built-in
// default list and persists it back; a malformed file is logged and
// leaves the blacklist empty.
func (b *Blacklist) Load(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.GetLogger().Infof("blacklist file %s missing, writing defaults", path)
		b.entries = append([]string(nil), defaultBlacklist...)
		b.saveLocked()
		return
	}
	if err != nil {
		log.GetLogger().WithError(err).Warnf("blacklist file %s not loaded", path)
		return
	}

	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		log.GetLogger().WithError(err).Warnf("blacklist file %s malformed", path)
		return
	}
	b.entries = entries
	log.GetLogger().Infof("loaded %d blacklist entries from %s", len(entries), path)
}

// Entries returns a copy of the current list.
func (b *Blacklist) Entries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.entries...)
}

// Add appends an entry (name or decimal opcode) and persists. Adding a
// duplicate is an error so the control surface can report it.
func (b *Blacklist) Add(entry string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e == entry {
			return fmt.Errorf("%s already blacklisted", entry)
		}
	}
	b.entries = append(b.entries, entry)
	return b.saveLocked()
}

// Remove deletes an entry and persists.
func (b *Blacklist) Remove(entry string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e == entry {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return b.saveLocked()
		}
	}
	return fmt.Errorf("%s not blacklisted", entry)
}

func (b *Blacklist) saveLocked() error {
	if b.path == "" {
		return nil
	}
	data, err := yaml.Marshal(b.entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		log.GetLogger().WithError(err).Warnf("blacklist file %s not saved", b.path)
		return err
	}
	return nil
}
