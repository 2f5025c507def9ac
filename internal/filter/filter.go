// Package filter decides which captured messages reach the decoder.
package filter

import (
	"strconv"
	"sync"
)

// Config is one immutable admission policy snapshot. Entries in the
// list fields match a message by symbolic name or by the opcode's
// decimal string form.
type Config struct {
	BlacklistEnabled bool
	Blacklist        []string
	Include          []string
	Exclude          []string
	MinSize          uint32
	MaxSize          uint32
}

// matches reports whether any entry names the message.
func matches(entries []string, name, opcodeStr string) bool {
	for _, e := range entries {
		if e == name || e == opcodeStr {
			return true
		}
	}
	return false
}

// Admit evaluates the policy in fixed order, short-circuiting on the
// first rejection: blacklist, min size, max size, include list,
// exclude list. The blacklist wins over an include match.
func Admit(opcode uint32, name string, size int, cfg Config) bool {
	opcodeStr := strconv.FormatUint(uint64(opcode), 10)

	if cfg.BlacklistEnabled && matches(cfg.Blacklist, name, opcodeStr) {
		return false
	}
	if cfg.MinSize > 0 && uint32(size) < cfg.MinSize {
		return false
	}
	if cfg.MaxSize > 0 && uint32(size) > cfg.MaxSize {
		return false
	}
	if len(cfg.Include) > 0 && !matches(cfg.Include, name, opcodeStr) {
		return false
	}
	if matches(cfg.Exclude, name, opcodeStr) {
		return false
	}
	return true
}

// State is the runtime-mutable policy. The control surface mutates it
// while the capture loop reads it, so every admission check works on a
// value snapshot.
type State struct {
	mu        sync.Mutex
	cfg       Config
	blacklist *Blacklist
}

func NewState(cfg Config, bl *Blacklist) *State {
	return &State{cfg: cfg, blacklist: bl}
}

// Snapshot returns a copy of the current policy with the blacklist
// contents folded in.
func (s *State) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg
	cfg.Blacklist = s.blacklist.Entries()
	cfg.Include = append([]string(nil), s.cfg.Include...)
	cfg.Exclude = append([]string(nil), s.cfg.Exclude...)
	return cfg
}

// Blacklist exposes the underlying blacklist store.
func (s *State) Blacklist() *Blacklist { return s.blacklist }

func (s *State) SetMinSize(v uint32) { s.mu.Lock(); s.cfg.MinSize = v; s.mu.Unlock() }
func (s *State) SetMaxSize(v uint32) { s.mu.Lock(); s.cfg.MaxSize = v; s.mu.Unlock() }

func (s *State) SetInclude(entries []string) {
	s.mu.Lock()
	s.cfg.Include = append([]string(nil), entries...)
	s.mu.Unlock()
}

func (s *State) SetExclude(entries []string) {
	s.mu.Lock()
	s.cfg.Exclude = append([]string(nil), entries...)
	s.mu.Unlock()
}

// ToggleBlacklist flips blacklist enforcement and returns the new state.
func (s *State) ToggleBlacklist() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.BlacklistEnabled = !s.cfg.BlacklistEnabled
	return s.cfg.BlacklistEnabled
}
