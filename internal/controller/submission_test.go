package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/config"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

type harness struct {
	fetcher   *fakeFetcher
	submitter *fakeSubmitter
	live      *config.Live
	sync      *Sync
	sub       *Submission
	log       *logbuf.Buffer
	steps     *transitionLog
	recorder  *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fetcher:   &fakeFetcher{roster: agentRoster},
		submitter: &fakeSubmitter{},
		live:      liveEndpoint(),
		log:       logbuf.New(0),
		steps:     &transitionLog{},
		recorder:  &fakeRecorder{},
	}
	var err error
	h.sync, err = NewSync(h.fetcher, h.live, h.log)
	require.NoError(t, err)
	h.sub, err = NewSubmission(h.submitter, h.live, h.sync, h.log,
		WithTransitionHook(h.steps.record), WithRecorder(h.recorder))
	require.NoError(t, err)
	return h
}

func TestNewSubmissionRejectsNilDependencies(t *testing.T) {
	h := newHarness(t)
	_, err := NewSubmission(nil, h.live, h.sync, h.log)
	assert.Error(t, err)
	_, err = NewSubmission(h.submitter, h.live, nil, h.log)
	assert.Error(t, err)
}

func TestForgePreconditions(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.sub.Forge(context.Background(), "   "))

	h.live.Set(registry.Endpoint{})
	assert.False(t, h.sub.Forge(context.Background(), "scan for open ports"))

	assert.Empty(t, h.submitter.tasks)
	assert.Zero(t, h.log.Len())
	assert.Empty(t, h.steps.list())
}

func TestForgeSuccess(t *testing.T) {
	h := newHarness(t)
	description := "audit every silo for drifted credentials nightly"

	ticket, ok := h.sub.BeginForge(description)
	require.True(t, ok)
	assert.Equal(t, StateSubmitting, h.sub.State(WorkflowForge))
	assert.True(t, CurrentActivity(h.sync, h.sub).Forging)

	_, again := h.sub.BeginForge("second draft")
	assert.False(t, again, "one forge in flight at a time")

	resync := h.sub.Complete(ticket.Run(context.Background()))
	assert.Nil(t, resync)

	assert.Equal(t, []string{
		"> [FORGE]: Drafting AI logic for: audit every silo for drif...",
		"✅ [AI_FORGE]: Capability blueprint draft completed.",
	}, texts(h.log))
	require.Len(t, h.submitter.tasks, 1)
	assert.Equal(t, ForgeTask(description), h.submitter.tasks[0])
	assert.Contains(t, h.submitter.tasks[0], description)
	assert.Zero(t, h.fetcher.callCount())
	assert.Empty(t, h.sync.List())
	assert.Equal(t, []string{"forge:submitting", "forge:succeeded", "forge:idle"}, h.steps.list())
	assert.False(t, CurrentActivity(h.sync, h.sub).Any())
	assert.Equal(t, []string{"forge:success"}, h.recorder.submissions)
}

func TestForgeFailure(t *testing.T) {
	h := newHarness(t)
	h.submitter.err = &registry.NetworkError{Op: "submit mission", Err: errors.New("timeout")}

	assert.False(t, h.sub.Forge(context.Background(), "x"))

	entries := h.log.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, logbuf.KindFault, entries[1].Kind)
	assert.Equal(t, "[FAULT]: AI Forge link desynchronized.", entries[1].Text)
	assert.Equal(t, []string{"forge:submitting", "forge:failed", "forge:idle"}, h.steps.list())
	assert.False(t, h.sub.Busy(WorkflowForge))
}

func TestInjectSuccessTriggersExactlyOneSync(t *testing.T) {
	h := newHarness(t)
	in := InjectInput{Name: "audit_silo_integrity", Category: arsenal.Cybersecurity, Code: "pass"}

	require.True(t, h.sub.Inject(context.Background(), in))

	assert.Equal(t, 1, h.fetcher.callCount())
	assert.Equal(t, []string{
		"> [INJECT]: Committing audit_silo_integrity to sector: Cybersecurity...",
		"✅ [SUCCESS]: Tool audit_silo_integrity absorbed into the Cybersecurity shard.",
		"> [SYNC]: 2 physical tools verified.",
	}, texts(h.log))
	assert.Equal(t, arsenal.Normalize(agentRoster), h.sync.List())
	assert.Equal(t, []string{
		"inject:submitting", "inject:succeeded", "inject:resyncing", "inject:idle",
	}, h.steps.list())
}

func TestInjectStaysBusyUntilResyncCompletes(t *testing.T) {
	h := newHarness(t)
	ticket, ok := h.sub.BeginInject(InjectInput{Name: "scan_ports", Category: arsenal.DevOpsInfrastructure})
	require.True(t, ok)

	resync := h.sub.Complete(ticket.Run(context.Background()))
	require.NotNil(t, resync)
	assert.Equal(t, StateResyncing, h.sub.State(WorkflowInject))
	activity := CurrentActivity(h.sync, h.sub)
	assert.True(t, activity.Injecting)
	assert.True(t, activity.Syncing)

	h.sync.Complete(resync.Run(context.Background()))
	assert.Equal(t, StateIdle, h.sub.State(WorkflowInject))
	assert.False(t, CurrentActivity(h.sync, h.sub).Any())
}

func TestInjectResyncSkippedWhenEndpointCleared(t *testing.T) {
	h := newHarness(t)
	ticket, ok := h.sub.BeginInject(InjectInput{Name: "scan_ports", Category: arsenal.DevOpsInfrastructure})
	require.True(t, ok)
	h.live.Set(registry.Endpoint{})

	assert.Nil(t, h.sub.Complete(ticket.Run(context.Background())))
	assert.Equal(t, StateIdle, h.sub.State(WorkflowInject))
	assert.Zero(t, h.fetcher.callCount())
}

func TestInjectFailureSkipsSync(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.sync.SyncNow(context.Background()))
	before := h.sync.List()
	h.submitter.err = errors.New("502")

	assert.False(t, h.sub.Inject(context.Background(), InjectInput{Name: "n", Category: arsenal.Architect}))

	assert.Equal(t, 1, h.fetcher.callCount())
	assert.Equal(t, before, h.sync.List())
	last := h.log.Snapshot()[h.log.Len()-1]
	assert.Equal(t, "❌ [INJECTION_FAILED]: Verification mismatch.", last.String())
	assert.False(t, h.sub.Busy(WorkflowInject))
}

func TestInjectPreconditions(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.sub.Inject(context.Background(), InjectInput{Name: " ", Category: arsenal.Architect}))
	assert.False(t, h.sub.Inject(context.Background(), InjectInput{Name: "x", Category: arsenal.Category(99)}))
	h.live.Set(registry.Endpoint{})
	assert.False(t, h.sub.Inject(context.Background(), InjectInput{Name: "x", Category: arsenal.Architect}))
	assert.Empty(t, h.submitter.tasks)
	assert.Zero(t, h.log.Len())
}

func TestForgeAndInjectAreIndependent(t *testing.T) {
	h := newHarness(t)
	forge, ok := h.sub.BeginForge("draft")
	require.True(t, ok)
	inject, ok := h.sub.BeginInject(InjectInput{Name: "x", Category: arsenal.Architect})
	require.True(t, ok)

	h.sub.Complete(forge.Run(context.Background()))
	assert.True(t, h.sub.Busy(WorkflowInject), "forge completion must not clear inject")

	if resync := h.sub.Complete(inject.Run(context.Background())); resync != nil {
		h.sync.Complete(resync.Run(context.Background()))
	}
	assert.False(t, CurrentActivity(h.sync, h.sub).Any())
}

func TestInjectTask(t *testing.T) {
	bare := InjectTask(InjectInput{Name: "audit_silo_integrity", Category: arsenal.Cybersecurity})
	assert.Equal(t, "Physically inject a new tool named audit_silo_integrity into the Cybersecurity shard.", bare)

	full := InjectTask(InjectInput{
		Name:     "audit_silo_integrity",
		Category: arsenal.Cybersecurity,
		Code:     DefaultInjectCode,
		Imports:  DefaultInjectImports,
	})
	assert.True(t, strings.HasPrefix(full, bare))
	assert.Contains(t, full, "Imports:\n"+DefaultInjectImports)
	assert.Contains(t, full, "Implementation:\n"+DefaultInjectCode)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 25))
	assert.Equal(t, "ééé", preview("éééé", 3))
}

func TestInjectEndToEndAgainstRegistry(t *testing.T) {
	var missions, fetches int32
	var mu sync.Mutex
	var lastTask string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case registry.MissionPath:
			atomic.AddInt32(&missions, 1)
			raw, _ := io.ReadAll(r.Body)
			mu.Lock()
			lastTask = string(raw)
			mu.Unlock()
			_, _ = io.WriteString(w, `{"status":"accepted"}`)
		case registry.RosterPath:
			atomic.AddInt32(&fetches, 1)
			_, _ = io.WriteString(w, `{"roster":[{"name":"Sentinel","department":"Cybersecurity","tools":["audit_silo_integrity","scan_ports"]}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := registry.New()
	live := config.NewLive(registry.Endpoint{BaseURL: server.URL + "/", APIKey: "k"})
	buf := logbuf.New(0)
	s, err := NewSync(client, live, buf)
	require.NoError(t, err)
	sub, err := NewSubmission(client, live, s, buf)
	require.NoError(t, err)

	require.True(t, sub.Inject(context.Background(), InjectInput{
		Name:     "audit_silo_integrity",
		Category: arsenal.Cybersecurity,
		Code:     "pass",
	}))

	assert.EqualValues(t, 1, atomic.LoadInt32(&missions))
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
	mu.Lock()
	task := lastTask
	mu.Unlock()
	assert.Contains(t, task, "audit_silo_integrity")
	assert.Contains(t, task, "Cybersecurity")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "audit_silo_integrity", list[0].Name)
	assert.Equal(t, "Cybersecurity", list[0].Category)

	logged := texts(buf)
	require.Len(t, logged, 3)
	assert.True(t, strings.HasPrefix(logged[0], "> [INJECT]"))
	assert.True(t, strings.HasPrefix(logged[1], "✅ [SUCCESS]"))
	assert.True(t, strings.HasPrefix(logged[2], "> [SYNC]"))
}
