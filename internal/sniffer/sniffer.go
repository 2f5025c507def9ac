// Package sniffer wires the capture feed through the admission filter,
// the schema decoder and the template formatter, and writes one record
// per admitted message to the output sink.
package sniffer

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spyglass-tools/spyglass/internal/decode"
	"github.com/spyglass-tools/spyglass/internal/describe"
	"github.com/spyglass-tools/spyglass/internal/filter"
	"github.com/spyglass-tools/spyglass/internal/log"
	"github.com/spyglass-tools/spyglass/internal/opcode"
	"github.com/spyglass-tools/spyglass/internal/schema"
	"github.com/spyglass-tools/spyglass/internal/source"
)

// Stats is a counter snapshot for the status command.
type Stats struct {
	Running  bool   `json:"running"`
	Seen     uint64 `json:"seen"`
	Admitted uint64 `json:"admitted"`
	Rejected uint64 `json:"rejected"`
	Decoded  uint64 `json:"decoded"`
	Rendered uint64 `json:"rendered"`
}

// Sniffer processes messages strictly in arrival order; HandleMessage
// is never called concurrently (the source contract), so the only
// shared state needing care is the filter policy and the render
// options, both snapshotted per message.
type Sniffer struct {
	opcodes *opcode.Table
	schemas *schema.Store
	descs   *describe.Store
	filters *filter.State

	optMu sync.Mutex
	opts  RenderOptions

	out io.Writer

	running  atomic.Bool
	seen     atomic.Uint64
	admitted atomic.Uint64
	rejected atomic.Uint64
	decoded  atomic.Uint64
	rendered atomic.Uint64
}

func New(opcodes *opcode.Table, schemas *schema.Store, descs *describe.Store, filters *filter.State, opts RenderOptions, out io.Writer) *Sniffer {
	return &Sniffer{
		opcodes: opcodes,
		schemas: schemas,
		descs:   descs,
		filters: filters,
		opts:    opts,
		out:     out,
	}
}

// Start enables message processing. Messages delivered while stopped
// are dropped without counting.
func (s *Sniffer) Start() {
	if s.running.CompareAndSwap(false, true) {
		log.GetLogger().Info("sniffer started")
	}
}

// Stop disables message processing.
func (s *Sniffer) Stop() {
	if s.running.CompareAndSwap(true, false) {
		log.GetLogger().Info("sniffer stopped")
	}
}

func (s *Sniffer) Running() bool { return s.running.Load() }

// Filters exposes the admission policy for the control surface.
func (s *Sniffer) Filters() *filter.State { return s.filters }

// Descriptions exposes the description store for the control surface.
func (s *Sniffer) Descriptions() *describe.Store { return s.descs }

// Opcodes exposes the opcode table for the control surface.
func (s *Sniffer) Opcodes() *opcode.Table { return s.opcodes }

// HandleMessage runs one message through filter → decode → describe →
// render. Nothing in this path can fail hard: undecodable content
// degrades to an undecorated record.
func (s *Sniffer) HandleMessage(msg source.Message) {
	if !s.running.Load() {
		return
	}
	s.seen.Add(1)

	name, known := s.opcodes.Lookup(msg.Opcode)
	display := s.opcodes.NameOf(msg.Opcode)

	if !filter.Admit(msg.Opcode, display, len(msg.Payload), s.filters.Snapshot()) {
		s.rejected.Add(1)
		return
	}
	s.admitted.Add(1)

	var fields decode.Fields
	if layout := s.schemas.Resolve(display); layout != nil {
		fields = decode.Decode(layout, msg.Payload)
		if len(fields) > 0 {
			s.decoded.Add(1)
		}
	}

	var rendered *describe.Rendered
	if r, ok := s.descs.Describe(display, fields); ok {
		rendered = &r
		s.rendered.Add(1)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := Record{
		Time:      ts,
		Direction: msg.Direction,
		Opcode:    msg.Opcode,
		Name:      name,
		NameKnown: known,
		Payload:   msg.Payload,
		Rendered:  rendered,
	}
	if _, err := io.WriteString(s.out, rec.Render(s.Options())); err != nil {
		log.GetLogger().WithError(err).Warn("record write failed")
	}
}

// Options returns a copy of the current render options.
func (s *Sniffer) Options() RenderOptions {
	s.optMu.Lock()
	defer s.optMu.Unlock()
	return s.opts
}

// SetOption updates one render toggle by its setting name.
func (s *Sniffer) SetOption(name string, value bool) error {
	s.optMu.Lock()
	defer s.optMu.Unlock()
	switch name {
	case "timestamp":
		s.opts.Timestamp = value
	case "direction":
		s.opts.Direction = value
	case "opcode_names":
		s.opts.OpcodeNames = value
	case "size":
		s.opts.Size = value
	case "hex_dump":
		s.opts.HexDump = value
	case "description":
		s.opts.Description = value
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	return nil
}

// Stats snapshots the counters.
func (s *Sniffer) Stats() Stats {
	return Stats{
		Running:  s.running.Load(),
		Seen:     s.seen.Load(),
		Admitted: s.admitted.Load(),
		Rejected: s.rejected.Load(),
		Decoded:  s.decoded.Load(),
		Rendered: s.rendered.Load(),
	}
}

// Reset zeroes the counters.
func (s *Sniffer) Reset() {
	s.seen.Store(0)
	s.admitted.Store(0)
	s.rejected.Store(0)
	s.decoded.Store(0)
	s.rendered.Store(0)
}
