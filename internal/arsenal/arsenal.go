// Package arsenal holds the capability data model and the roster normalizer.
package arsenal

import "strings"

// DefaultCategory is assigned to capabilities whose agent has no department.
const DefaultCategory = "Platform-Default"

type Status string

const (
	StatusVerified     Status = "VERIFIED"
	StatusExperimental Status = "EXPERIMENTAL"
	StatusEvolving     Status = "EVOLVING"
)

type Origin string

const (
	OriginPlatform Origin = "PLATFORM"
	OriginAgent    Origin = "AGENT"
)

// CapabilityEntry is one normalized capability. Entries are values; a sync
// replaces the whole list rather than patching entries in place.
type CapabilityEntry struct {
	Name     string
	Category string
	Status   Status
	Origin   Origin
}

// AgentRecord is one roster row as reported by the registry. An empty
// Department or nil Tools means the field was absent.
type AgentRecord struct {
	Name       string
	Department string
	Tools      []string
}

// Roster is the raw agent list returned by a fetch. It is discarded once
// normalized.
type Roster struct {
	Agents []AgentRecord
}

// ToolCount is the number of capability references across all agents,
// duplicates included.
func (r Roster) ToolCount() int {
	n := 0
	for _, agent := range r.Agents {
		n += len(agent.Tools)
	}
	return n
}

// Classify reports the origin for a capability name: self-modifying or
// spawning capabilities are attributed to agents.
func Classify(name string) Origin {
	if strings.Contains(name, "self") || strings.Contains(name, "spawn") {
		return OriginAgent
	}
	return OriginPlatform
}

// Filter keeps the entries whose name or category contains query, ignoring
// case. An empty query keeps everything.
func Filter(entries []CapabilityEntry, query string) []CapabilityEntry {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return entries
	}
	out := make([]CapabilityEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), needle) ||
			strings.Contains(strings.ToLower(entry.Category), needle) {
			out = append(out, entry)
		}
	}
	return out
}

// CountByOrigin tallies entries per origin.
func CountByOrigin(entries []CapabilityEntry) map[Origin]int {
	out := map[Origin]int{}
	for _, entry := range entries {
		out[entry.Origin]++
	}
	return out
}
