// Package featureflags evaluates rollout flags parsed from config.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// flag is one parsed entry. pct is -1 for boolean values; unknown
// values parse as a disabled boolean but stay visible in Raw.
type flag struct {
	raw string
	on  bool
	pct int
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "post_summary=on,new_feed=25%,legacy_ui=off"
type Manager struct {
	flags map[string]flag
}

// NewManager parses a comma-separated config string. Malformed pairs
// are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]flag)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = parseValue(value)
	}

	return &Manager{flags: out}
}

func parseValue(value string) flag {
	f := flag{raw: value, pct: -1}

	switch value {
	case "on", "true", "1":
		f.on = true
		return f
	case "off", "false", "0":
		return f
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		if pct, err := strconv.Atoi(pctRaw); err == nil {
			f.pct = pct
		}
	}
	return f
}

// Enabled reports whether a flag is on for the given user. Values are
// on/true/1, off/false/0, or N% for a deterministic per-user rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	if f.pct < 0 {
		return f.on
	}

	switch {
	case f.pct == 0:
		return false
	case f.pct >= 100:
		return true
	case userID == 0:
		// Partial rollouts need a stable identity to bucket on.
		return false
	}
	return rolloutBucket(name, userID) < f.pct
}

// Raw returns a copy of the configured flag values as written.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for name, f := range m.flags {
		out[name] = f.raw
	}
	return out
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
