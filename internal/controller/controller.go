// Package controller sequences the remote workflows against a single
// registry endpoint.
//
// Every workflow is split into three phases so it can be driven from a
// single-threaded event loop: Begin runs on the loop and records intent,
// Run performs the network call and touches no shared state, and Complete
// runs back on the loop and applies the result. The blocking helpers
// (SyncNow, Forge, Inject) chain the phases for headless callers.
package controller

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

type RosterFetcher interface {
	FetchRoster(ctx context.Context, ep registry.Endpoint) (arsenal.Roster, error)
}

type MissionSubmitter interface {
	SubmitMission(ctx context.Context, ep registry.Endpoint, task string) error
}

// EndpointSource yields the current endpoint. Workflows read it once, when
// issued, and carry that snapshot through the call.
type EndpointSource interface {
	Endpoint() registry.Endpoint
}

// Recorder receives workflow outcomes, typically for metrics.
type Recorder interface {
	SyncCompleted(ok bool, capabilities int)
	SubmissionCompleted(workflow string, ok bool)
	InFlight(workflow string, delta int)
}

type nopRecorder struct{}

func (nopRecorder) SyncCompleted(bool, int)          {}
func (nopRecorder) SubmissionCompleted(string, bool) {}
func (nopRecorder) InFlight(string, int)             {}

var errNilDependency = errors.New("controller: nil dependency")

// Workflow names one of the remote workflows.
type Workflow int

const (
	WorkflowSync Workflow = iota
	WorkflowForge
	WorkflowInject
)

func (w Workflow) String() string {
	switch w {
	case WorkflowForge:
		return "forge"
	case WorkflowInject:
		return "inject"
	default:
		return "sync"
	}
}

// State is a submission workflow's position in
// Idle -> Submitting -> {Succeeded -> [Resyncing] -> Idle, Failed -> Idle}.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateResyncing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateResyncing:
		return "resyncing"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Policy decides which of several overlapping sync results is kept.
type Policy int

const (
	// LastCompleted keeps whichever successful fetch finishes last, even if
	// it was issued earlier than one already applied.
	LastCompleted Policy = iota
	// LatestIssued keeps only results issued after the one currently
	// applied; older results that finish late are discarded.
	LatestIssued
)

func (p Policy) String() string {
	if p == LatestIssued {
		return "latest-issued"
	}
	return "last-completed"
}

// TransitionFunc observes submission state changes.
type TransitionFunc func(w Workflow, from, to State)

type options struct {
	recorder   Recorder
	logger     zerolog.Logger
	policy     Policy
	transition TransitionFunc
}

type Option func(*options)

func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func WithTransitionHook(fn TransitionFunc) Option {
	return func(o *options) {
		o.transition = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
		policy:   LastCompleted,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Activity is the per-workflow busy state, composed by the presentation
// layer into one indicator.
type Activity struct {
	Syncing   bool
	Forging   bool
	Injecting bool
}

func (a Activity) Any() bool {
	return a.Syncing || a.Forging || a.Injecting
}

// CurrentActivity reads each workflow's busy flag.
func CurrentActivity(s *Sync, sub *Submission) Activity {
	return Activity{
		Syncing:   s.Busy(),
		Forging:   sub.Busy(WorkflowForge),
		Injecting: sub.Busy(WorkflowInject),
	}
}
