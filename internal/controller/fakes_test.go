package controller

import (
	"context"
	"sync"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/config"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

type fakeFetcher struct {
	mu        sync.Mutex
	roster    arsenal.Roster
	err       error
	calls     int
	endpoints []registry.Endpoint
}

func (f *fakeFetcher) FetchRoster(_ context.Context, ep registry.Endpoint) (arsenal.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.endpoints = append(f.endpoints, ep)
	return f.roster, f.err
}

func (f *fakeFetcher) set(roster arsenal.Roster, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roster = roster
	f.err = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	tasks []string
}

func (f *fakeSubmitter) SubmitMission(_ context.Context, _ registry.Endpoint, task string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return f.err
}

type fakeRecorder struct {
	syncs       []bool
	submissions []string
	inFlight    map[string]int
}

func (r *fakeRecorder) SyncCompleted(ok bool, _ int) {
	r.syncs = append(r.syncs, ok)
}

func (r *fakeRecorder) SubmissionCompleted(workflow string, ok bool) {
	if ok {
		r.submissions = append(r.submissions, workflow+":success")
	} else {
		r.submissions = append(r.submissions, workflow+":failure")
	}
}

func (r *fakeRecorder) InFlight(workflow string, delta int) {
	if r.inFlight == nil {
		r.inFlight = map[string]int{}
	}
	r.inFlight[workflow] += delta
}

type transitionLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *transitionLog) record(w Workflow, _, to State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, w.String()+":"+to.String())
}

func (l *transitionLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

var agentRoster = arsenal.Roster{Agents: []arsenal.AgentRecord{
	{Name: "Agent1", Department: "DevOps_Infrastructure", Tools: []string{"self_heal", "scan_ports"}},
}}

func liveEndpoint() *config.Live {
	return config.NewLive(registry.Endpoint{BaseURL: "https://registry.example", APIKey: "sk-test"})
}

func texts(buf *logbuf.Buffer) []string {
	entries := buf.Snapshot()
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.String())
	}
	return out
}
