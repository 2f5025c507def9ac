// Package command implements the local control plane: a JSON command
// protocol served over a Unix domain socket.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spyglass-tools/spyglass/internal/config"
	"github.com/spyglass-tools/spyglass/internal/log"
	"github.com/spyglass-tools/spyglass/internal/sniffer"
)

// Command is one control plane request.
type Command struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     string          `json:"id"`
}

// Response answers one command.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo carries a failed command's code and message.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error codes, JSON-RPC style.
const (
	ErrCodeParseError     = -32700
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Handler dispatches control plane commands against the running
// sniffer. Failed commands mutate nothing.
type Handler struct {
	sniffer    *sniffer.Sniffer
	cfg        *config.Config
	configPath string
	shutdown   func()
	startTime  time.Time
}

func NewHandler(s *sniffer.Sniffer, cfg *config.Config, configPath string) *Handler {
	return &Handler{
		sniffer:    s,
		cfg:        cfg,
		configPath: configPath,
		startTime:  time.Now(),
	}
}

// SetShutdownFunc sets the callback invoked by daemon_shutdown.
func (h *Handler) SetShutdownFunc(fn func()) {
	h.shutdown = fn
}

// Handle processes one command.
func (h *Handler) Handle(ctx context.Context, cmd Command) Response {
	log.GetLogger().WithField("method", cmd.Method).Debug("handling command")

	switch cmd.Method {
	case "sniffer_start":
		h.sniffer.Start()
		return ok(cmd.ID, "started")
	case "sniffer_stop":
		h.sniffer.Stop()
		return ok(cmd.ID, "stopped")
	case "status":
		return h.handleStatus(cmd)
	case "reset":
		h.sniffer.Reset()
		return ok(cmd.ID, "counters reset")
	case "set":
		return h.handleSet(cmd)
	case "filter_set":
		return h.handleFilterSet(cmd)
	case "blacklist_list":
		return ok(cmd.ID, h.sniffer.Filters().Blacklist().Entries())
	case "blacklist_add":
		return h.handleBlacklistAdd(cmd)
	case "blacklist_remove":
		return h.handleBlacklistRemove(cmd)
	case "blacklist_toggle":
		enabled := h.sniffer.Filters().ToggleBlacklist()
		h.persistFilter()
		return ok(cmd.ID, map[string]bool{"enabled": enabled})
	case "desc_list":
		return ok(cmd.ID, h.sniffer.Descriptions().List())
	case "desc_toggle":
		return h.handleDescToggle(cmd)
	case "opcode_lookup":
		return h.handleOpcodeLookup(cmd)
	case "daemon_shutdown":
		if h.shutdown != nil {
			go h.shutdown()
		}
		return ok(cmd.ID, "shutting down")
	default:
		return fail(cmd.ID, ErrCodeMethodNotFound, fmt.Sprintf("method %q not found", cmd.Method))
	}
}

func ok(id string, result interface{}) Response {
	return Response{ID: id, Result: result}
}

func fail(id string, code int, msg string) Response {
	return Response{ID: id, Error: &ErrorInfo{Code: code, Message: msg}}
}

// StatusResult is the status command payload.
type StatusResult struct {
	sniffer.Stats
	UptimeSeconds int64 `json:"uptime_seconds"`
}

func (h *Handler) handleStatus(cmd Command) Response {
	return ok(cmd.ID, StatusResult{
		Stats:         h.sniffer.Stats(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// SetParams updates one output toggle.
type SetParams struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

func (h *Handler) handleSet(cmd Command) Response {
	var p SetParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	if err := h.sniffer.SetOption(p.Name, p.Value); err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, err.Error())
	}
	h.persistOutput(p.Name, p.Value)
	return ok(cmd.ID, fmt.Sprintf("%s = %t", p.Name, p.Value))
}

// FilterSetParams updates one admission filter setting. Value is the
// raw text from the CLI; list filters accept comma-separated entries.
type FilterSetParams struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (h *Handler) handleFilterSet(cmd Command) Response {
	var p FilterSetParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}

	filters := h.sniffer.Filters()
	switch p.Type {
	case "minsize":
		n, err := strconv.ParseUint(p.Value, 10, 32)
		if err != nil {
			return fail(cmd.ID, ErrCodeInvalidParams, fmt.Sprintf("minsize: %v", err))
		}
		filters.SetMinSize(uint32(n))
		h.cfg.Filter.MinSize = uint32(n)
	case "maxsize":
		n, err := strconv.ParseUint(p.Value, 10, 32)
		if err != nil {
			return fail(cmd.ID, ErrCodeInvalidParams, fmt.Sprintf("maxsize: %v", err))
		}
		filters.SetMaxSize(uint32(n))
		h.cfg.Filter.MaxSize = uint32(n)
	case "include":
		entries := splitList(p.Value)
		filters.SetInclude(entries)
		h.cfg.Filter.Include = entries
	case "exclude":
		entries := splitList(p.Value)
		filters.SetExclude(entries)
		h.cfg.Filter.Exclude = entries
	default:
		return fail(cmd.ID, ErrCodeInvalidParams, fmt.Sprintf("unknown filter type %q", p.Type))
	}

	h.persistFilter()
	return ok(cmd.ID, fmt.Sprintf("filter %s = %s", p.Type, p.Value))
}

// BlacklistParams names one blacklist entry.
type BlacklistParams struct {
	Entry string `json:"entry"`
}

func (h *Handler) handleBlacklistAdd(cmd Command) Response {
	var p BlacklistParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil || p.Entry == "" {
		return fail(cmd.ID, ErrCodeInvalidParams, "entry is required")
	}
	if err := h.sniffer.Filters().Blacklist().Add(p.Entry); err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, err.Error())
	}
	return ok(cmd.ID, fmt.Sprintf("%s blacklisted", p.Entry))
}

func (h *Handler) handleBlacklistRemove(cmd Command) Response {
	var p BlacklistParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil || p.Entry == "" {
		return fail(cmd.ID, ErrCodeInvalidParams, "entry is required")
	}
	if err := h.sniffer.Filters().Blacklist().Remove(p.Entry); err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, err.Error())
	}
	return ok(cmd.ID, fmt.Sprintf("%s removed from blacklist", p.Entry))
}

// DescToggleParams names one description.
type DescToggleParams struct {
	Name string `json:"name"`
}

func (h *Handler) handleDescToggle(cmd Command) Response {
	var p DescToggleParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil || p.Name == "" {
		return fail(cmd.ID, ErrCodeInvalidParams, "name is required")
	}
	enabled, err := h.sniffer.Descriptions().Toggle(p.Name)
	if err != nil {
		return fail(cmd.ID, ErrCodeInvalidParams, err.Error())
	}
	return ok(cmd.ID, map[string]bool{"enabled": enabled})
}

// OpcodeLookupParams queries the opcode table, by number or by name
// substring.
type OpcodeLookupParams struct {
	Query string `json:"query"`
}

// OpcodeEntry is one lookup hit.
type OpcodeEntry struct {
	Opcode uint32 `json:"opcode"`
	Name   string `json:"name"`
}

func (h *Handler) handleOpcodeLookup(cmd Command) Response {
	var p OpcodeLookupParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil || p.Query == "" {
		return fail(cmd.ID, ErrCodeInvalidParams, "query is required")
	}

	table := h.sniffer.Opcodes()
	if n, err := strconv.ParseUint(p.Query, 10, 32); err == nil {
		return ok(cmd.ID, []OpcodeEntry{{Opcode: uint32(n), Name: table.NameOf(uint32(n))}})
	}

	matches := table.Matching(p.Query)
	entries := make([]OpcodeEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, OpcodeEntry{Opcode: m.Opcode, Name: m.Name})
	}
	return ok(cmd.ID, entries)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, e := range strings.Split(value, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// persistFilter writes the mutated filter settings back to the config
// file. Persistence failure is logged, the in-memory change stands.
func (h *Handler) persistFilter() {
	snap := h.sniffer.Filters().Snapshot()
	h.cfg.Filter.BlacklistEnabled = snap.BlacklistEnabled
	h.save()
}

func (h *Handler) persistOutput(name string, value bool) {
	switch name {
	case "timestamp":
		h.cfg.Output.Timestamp = value
	case "direction":
		h.cfg.Output.Direction = value
	case "opcode_names":
		h.cfg.Output.OpcodeNames = value
	case "size":
		h.cfg.Output.Size = value
	case "hex_dump":
		h.cfg.Output.HexDump = value
	case "description":
		h.cfg.Output.Description = value
	}
	h.save()
}

func (h *Handler) save() {
	if h.configPath == "" {
		return
	}
	if err := config.Save(h.cfg, h.configPath); err != nil {
		log.GetLogger().WithError(err).Warn("config not persisted")
	}
}
