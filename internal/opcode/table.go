// Package opcode maintains the mapping between numeric message opcodes
// and their symbolic names.
package opcode

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spyglass-tools/spyglass/internal/log"
)

// Match is one hit from a reverse name search.
type Match struct {
	Opcode uint32
	Name   string
}

// Table is a bidirectional opcode/name mapping. Forward lookup is
// indexed; reverse lookup is a linear scan, which is fine at the table
// sizes involved (a few thousand entries).
//
// The backing map is swapped atomically on Load so a reload never
// exposes a half-built table.
type Table struct {
	names atomic.Pointer[map[uint32]string]
}

func NewTable() *Table {
	t := &Table{}
	empty := map[uint32]string{}
	t.names.Store(&empty)
	return t
}

// Load reads a whitespace-separated "<name> <decimalOpcode>" file and
// replaces the table contents. A missing or unreadable file is logged
// and leaves the table empty: display degrades to numeric opcodes,
// startup never fails on this.
func (t *Table) Load(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.GetLogger().WithError(err).Warnf("opcode table %s not loaded, falling back to numeric display", path)
		return
	}
	defer f.Close()

	names := make(map[uint32]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		op, err := strconv.ParseUint(fields[len(fields)-1], 10, 32)
		if err != nil {
			// Lines without a trailing integer are ignored, not errors.
			continue
		}
		names[uint32(op)] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		log.GetLogger().WithError(err).Warnf("opcode table %s only partially read", path)
	}

	t.names.Store(&names)
	log.GetLogger().Infof("loaded %d opcode names from %s", len(names), path)
}

// NameOf returns the symbolic name for an opcode. Unmapped opcodes get
// a synthesized UNKNOWN_<n> placeholder so callers never see an error.
func (t *Table) NameOf(op uint32) string {
	if name, ok := (*t.names.Load())[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", op)
}

// Lookup reports the mapped name and whether one exists.
func (t *Table) Lookup(op uint32) (string, bool) {
	name, ok := (*t.names.Load())[op]
	return name, ok
}

// Matching returns every entry whose name contains substr,
// case-insensitively, in table iteration order. No ranking.
func (t *Table) Matching(substr string) []Match {
	needle := strings.ToLower(substr)
	var out []Match
	for op, name := range *t.names.Load() {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, Match{Opcode: op, Name: name})
		}
	}
	return out
}

// Len reports how many mappings are loaded.
func (t *Table) Len() int {
	return len(*t.names.Load())
}
