package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags the code evaluates by name. Anything else in the config string is
// carried and listed but gates nothing.
const (
	// FlagDisableRealtime mutes websocket delivery of fan-out
	// notifications. Stored notifications are unaffected; with a
	// percentage value the mute rolls out per recipient.
	FlagDisableRealtime = "disable_realtime"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "disable_realtime=on,feed_ranking_v2=25%,signup_banner=off"
type Manager struct {
	flags map[string]string
}

// NewManager parses the FEATURE_FLAGS config string. Malformed pairs are
// dropped silently so one typo never takes the config down.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled evaluates one flag for one user. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout. An unknown or
// unparseable value and a nil Manager both evaluate to off.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if !strings.HasSuffix(value, "%") {
		return false
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	// Anonymous users never land in a partial rollout.
	if userID == 0 {
		return false
	}
	return bucket(name, userID) < pct
}

// Raw returns a copy of the configured flag values as parsed.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every configured flag for one user.
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

// bucket maps (flag, user) onto 0..99; stable across restarts so a user
// stays in or out of a rollout.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
