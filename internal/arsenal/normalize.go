package arsenal

import (
	"slices"
	"strings"
)

// Fallback is the placeholder arsenal shown when the roster references no
// capabilities at all.
func Fallback() []CapabilityEntry {
	return []CapabilityEntry{
		{Name: "calculate_file_hash", Category: Cybersecurity.String(), Status: StatusVerified, Origin: OriginPlatform},
		{Name: "inject_new_capability", Category: SoftwareEngineering.String(), Status: StatusVerified, Origin: OriginPlatform},
		{Name: "lattice_scout_search", Category: DataIntelligence.String(), Status: StatusVerified, Origin: OriginPlatform},
	}
}

// Normalize deduplicates the roster's capability names (first occurrence
// wins), substitutes the fallback set when nothing was referenced, and sorts
// by name in byte order.
func Normalize(roster Roster) []CapabilityEntry {
	entries, _ := NormalizeCounted(roster)
	return entries
}

// NormalizeCounted is Normalize that also reports how many distinct
// capabilities the roster itself referenced; zero means the fallback set
// was substituted.
func NormalizeCounted(roster Roster) ([]CapabilityEntry, int) {
	seen := make(map[string]struct{})
	out := make([]CapabilityEntry, 0, roster.ToolCount())
	for _, agent := range roster.Agents {
		category := agent.Department
		if category == "" {
			category = DefaultCategory
		}
		for _, name := range agent.Tools {
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, CapabilityEntry{
				Name:     name,
				Category: category,
				Status:   StatusVerified,
				Origin:   Classify(name),
			})
		}
	}
	distinct := len(out)
	if distinct == 0 {
		out = Fallback()
	}
	slices.SortFunc(out, func(a, b CapabilityEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, distinct
}

// IsFallback reports whether entries is exactly the placeholder set.
func IsFallback(entries []CapabilityEntry) bool {
	return slices.Equal(entries, Fallback())
}
