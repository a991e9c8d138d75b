package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

const (
	// DefaultInjectCode is the skeleton offered for manual injection.
	DefaultInjectCode = "@tool\n" +
		"async def new_capability(args: str):\n" +
		"    \"\"\"Production-grade industrial logic.\"\"\"\n" +
		"    # 1. Initialize Senses\n" +
		"    # 2. Execute Physics\n" +
		"    # 3. Commit to Ledger\n" +
		"    pass"
	DefaultInjectImports = "from src.system.arsenal.foundation import *"

	forgePreviewChars = 25

	forgeDraftFormat   = "[FORGE]: Drafting AI logic for: %s..."
	forgeOKText        = "[AI_FORGE]: Capability blueprint draft completed."
	forgeFaultText     = "[FAULT]: AI Forge link desynchronized."
	injectCommitFormat = "[INJECT]: Committing %s to sector: %s..."
	injectOKFormat     = "[SUCCESS]: Tool %s absorbed into the %s shard."
	injectFaultText    = "[INJECTION_FAILED]: Verification mismatch."
)

// InjectInput is a manually authored capability. Code and Imports are
// forwarded verbatim and never inspected.
type InjectInput struct {
	Name     string
	Category arsenal.Category
	Code     string
	Imports  string
}

// ForgeTask is the mission asking the registry to draft a capability.
func ForgeTask(description string) string {
	return fmt.Sprintf("ForgeMaster, physically draft a production-grade Python @tool for this requirement: %q.", description)
}

// InjectTask is the mission asking the registry to register a capability.
func InjectTask(in InjectInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Physically inject a new tool named %s into the %s shard.", in.Name, in.Category)
	if imports := strings.TrimSpace(in.Imports); imports != "" {
		b.WriteString("\n\nImports:\n")
		b.WriteString(imports)
	}
	if code := strings.TrimSpace(in.Code); code != "" {
		b.WriteString("\n\nImplementation:\n")
		b.WriteString(code)
	}
	return b.String()
}

// Submission owns the forge and inject workflows. Each workflow admits one
// submission at a time; the two are independent of each other and of sync.
type Submission struct {
	submitter MissionSubmitter
	source    EndpointSource
	sync      *Sync
	log       *logbuf.Buffer
	opts      options

	mu     sync.Mutex
	states map[Workflow]State
}

// SubmitTicket is an issued forge or inject.
type SubmitTicket struct {
	Workflow Workflow
	Endpoint registry.Endpoint
	Task     string

	name      string
	category  arsenal.Category
	submitter MissionSubmitter
}

type SubmitResult struct {
	ticket *SubmitTicket
	Err    error
}

func (r SubmitResult) Workflow() Workflow {
	return r.ticket.Workflow
}

func NewSubmission(submitter MissionSubmitter, source EndpointSource, s *Sync, log *logbuf.Buffer, opts ...Option) (*Submission, error) {
	if submitter == nil || source == nil || s == nil || log == nil {
		return nil, errNilDependency
	}
	return &Submission{
		submitter: submitter,
		source:    source,
		sync:      s,
		log:       log,
		opts:      buildOptions(opts),
		states: map[Workflow]State{
			WorkflowForge:  StateIdle,
			WorkflowInject: StateIdle,
		},
	}, nil
}

// BeginForge issues a draft request. It reports false, and does nothing,
// for a blank description, an unconfigured endpoint, or a forge already in
// flight.
func (s *Submission) BeginForge(description string) (*SubmitTicket, bool) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, false
	}
	ep := s.source.Endpoint()
	if !ep.Configured() || !s.claim(WorkflowForge) {
		return nil, false
	}
	s.log.Append(logbuf.KindInfo, fmt.Sprintf(forgeDraftFormat, preview(description, forgePreviewChars)))
	s.opts.recorder.InFlight(WorkflowForge.String(), 1)
	return &SubmitTicket{
		Workflow:  WorkflowForge,
		Endpoint:  ep,
		Task:      ForgeTask(description),
		submitter: s.submitter,
	}, true
}

// BeginInject issues a registration. It reports false, and does nothing,
// for a blank name, an unknown category, an unconfigured endpoint, or an
// inject already in flight.
func (s *Submission) BeginInject(in InjectInput) (*SubmitTicket, bool) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || !in.Category.Valid() {
		return nil, false
	}
	ep := s.source.Endpoint()
	if !ep.Configured() || !s.claim(WorkflowInject) {
		return nil, false
	}
	s.log.Append(logbuf.KindInfo, fmt.Sprintf(injectCommitFormat, in.Name, in.Category))
	s.opts.recorder.InFlight(WorkflowInject.String(), 1)
	return &SubmitTicket{
		Workflow:  WorkflowInject,
		Endpoint:  ep,
		Task:      InjectTask(in),
		name:      in.Name,
		category:  in.Category,
		submitter: s.submitter,
	}, true
}

// Run submits the mission. It is safe to call off the event loop.
func (t *SubmitTicket) Run(ctx context.Context) SubmitResult {
	return SubmitResult{ticket: t, Err: t.submitter.SubmitMission(ctx, t.Endpoint, t.Task)}
}

// Complete applies a finished submission. A successful inject issues the
// follow-up sync and returns its ticket; the inject stays busy until that
// sync completes. Every other outcome returns nil and leaves the workflow
// idle.
func (s *Submission) Complete(res SubmitResult) *SyncTicket {
	w := res.ticket.Workflow
	ok := res.Err == nil
	s.opts.recorder.InFlight(w.String(), -1)
	s.opts.recorder.SubmissionCompleted(w.String(), ok)
	if !ok {
		s.opts.logger.Warn().Err(res.Err).Str("workflow", w.String()).Msg("submission failed")
	}

	switch {
	case w == WorkflowForge && ok:
		s.log.Append(logbuf.KindSuccess, forgeOKText)
	case w == WorkflowForge:
		s.log.Append(logbuf.KindFault, forgeFaultText)
	case ok:
		s.log.Append(logbuf.KindSuccess, fmt.Sprintf(injectOKFormat, res.ticket.name, res.ticket.category))
	default:
		s.log.Append(logbuf.KindFault, injectFaultText)
	}

	if !ok {
		s.transition(w, StateFailed)
		s.transition(w, StateIdle)
		return nil
	}
	s.transition(w, StateSucceeded)
	if w != WorkflowInject {
		s.transition(w, StateIdle)
		return nil
	}

	s.transition(w, StateResyncing)
	ticket, issued := s.sync.Begin()
	if !issued {
		s.transition(w, StateIdle)
		return nil
	}
	ticket.after = func() {
		s.transition(WorkflowInject, StateIdle)
	}
	return ticket
}

// Forge runs a whole forge on the calling goroutine. It reports whether a
// draft was submitted successfully.
func (s *Submission) Forge(ctx context.Context, description string) bool {
	ticket, ok := s.BeginForge(description)
	if !ok {
		return false
	}
	res := ticket.Run(ctx)
	s.Complete(res)
	return res.Err == nil
}

// Inject runs a whole inject, including the follow-up sync, on the calling
// goroutine. It reports whether the submission succeeded.
func (s *Submission) Inject(ctx context.Context, in InjectInput) bool {
	ticket, ok := s.BeginInject(in)
	if !ok {
		return false
	}
	res := ticket.Run(ctx)
	if resync := s.Complete(res); resync != nil {
		s.sync.Complete(resync.Run(ctx))
	}
	return res.Err == nil
}

func (s *Submission) State(w Workflow) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[w]
}

// Busy reports whether w has left Idle.
func (s *Submission) Busy(w Workflow) bool {
	return s.State(w) != StateIdle
}

func (s *Submission) claim(w Workflow) bool {
	s.mu.Lock()
	if s.states[w] != StateIdle {
		s.mu.Unlock()
		return false
	}
	s.states[w] = StateSubmitting
	s.mu.Unlock()
	s.notify(w, StateIdle, StateSubmitting)
	return true
}

func (s *Submission) transition(w Workflow, to State) {
	s.mu.Lock()
	from := s.states[w]
	s.states[w] = to
	s.mu.Unlock()
	s.notify(w, from, to)
}

func (s *Submission) notify(w Workflow, from, to State) {
	s.opts.logger.Debug().Str("workflow", w.String()).Str("from", from.String()).Str("to", to.String()).Msg("workflow transition")
	if s.opts.transition != nil {
		s.opts.transition(w, from, to)
	}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
