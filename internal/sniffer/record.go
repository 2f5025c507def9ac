package sniffer

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spyglass-tools/spyglass/internal/describe"
	"github.com/spyglass-tools/spyglass/internal/source"
)

// RenderOptions toggles the individual segments of a record line.
type RenderOptions struct {
	Timestamp   bool
	Direction   bool
	OpcodeNames bool
	Size        bool
	HexDump     bool
	Description bool
}

// Record is everything known about one admitted message, ready to be
// rendered. It lives only for the duration of handling that message.
type Record struct {
	Time      time.Time
	Direction source.Direction
	Opcode    uint32
	Name      string
	NameKnown bool
	Payload   []byte
	Rendered  *describe.Rendered
}

const timestampLayout = "2006-01-02 15:04:05.000"

// Render builds the output block for the record: a header line,
// optionally followed by a hex dump of the payload and the formatted
// description.
func (r *Record) Render(opt RenderOptions) string {
	var sb strings.Builder

	parts := make([]string, 0, 4)
	if opt.Timestamp {
		parts = append(parts, r.Time.Format(timestampLayout))
	}
	if opt.Direction {
		parts = append(parts, "["+r.Direction.String()+"]")
	}
	if opt.OpcodeNames && r.NameKnown {
		parts = append(parts, fmt.Sprintf("%s (%d)", r.Name, r.Opcode))
	} else {
		parts = append(parts, fmt.Sprintf("%d", r.Opcode))
	}
	if opt.Size {
		parts = append(parts, fmt.Sprintf("len=%d", len(r.Payload)))
	}
	sb.WriteString(strings.Join(parts, " "))
	sb.WriteByte('\n')

	if opt.HexDump && len(r.Payload) > 0 {
		sb.WriteString(hex.Dump(r.Payload))
	}
	if opt.Description && r.Rendered != nil {
		sb.WriteString("  ")
		if r.Rendered.Description != "" {
			sb.WriteString(r.Rendered.Description)
			sb.WriteString(": ")
		}
		sb.WriteString(r.Rendered.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
