package registry

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rosterEnvelope struct {
	Roster jsoniter.RawMessage `json:"roster"`
}

type wireAgent struct {
	Name       any `json:"name"`
	Department any `json:"department"`
	Tools      any `json:"tools"`
}

type missionRequest struct {
	Task string `json:"task"`
}

// decodeRoster never fails: an absent or malformed roster is an empty one,
// and malformed rows or non-string tool names are skipped.
func decodeRoster(payload []byte) arsenal.Roster {
	var envelope rosterEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil || len(envelope.Roster) == 0 {
		return arsenal.Roster{}
	}
	var rows []jsoniter.RawMessage
	if err := json.Unmarshal(envelope.Roster, &rows); err != nil {
		return arsenal.Roster{}
	}
	roster := arsenal.Roster{Agents: make([]arsenal.AgentRecord, 0, len(rows))}
	for _, row := range rows {
		var agent wireAgent
		if err := json.Unmarshal(row, &agent); err != nil {
			continue
		}
		record := arsenal.AgentRecord{}
		record.Name, _ = agent.Name.(string)
		record.Department, _ = agent.Department.(string)
		if tools, ok := agent.Tools.([]any); ok {
			record.Tools = make([]string, 0, len(tools))
			for _, tool := range tools {
				if name, ok := tool.(string); ok {
					record.Tools = append(record.Tools, name)
				}
			}
		}
		roster.Agents = append(roster.Agents, record)
	}
	return roster
}
