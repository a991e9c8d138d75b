package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

const (
	syncOKFormat    = "[SYNC]: %d physical tools verified."
	syncFaultText   = "[FAULT]: Tool registry connection desynchronized."
	syncStaleFormat = "[SYNC]: superseded result #%d discarded."
)

// Sync owns the authoritative capability list.
type Sync struct {
	fetcher RosterFetcher
	source  EndpointSource
	log     *logbuf.Buffer
	opts    options

	mu         sync.Mutex
	list       []arsenal.CapabilityEntry
	inFlight   int
	issued     uint64
	applied    uint64
	lastSynced time.Time
}

// SyncTicket is an issued sync. Its endpoint is fixed at issue time.
type SyncTicket struct {
	Token    uint64
	Endpoint registry.Endpoint

	fetcher RosterFetcher
	after   func()
}

// SyncResult carries a finished fetch back to the event loop.
type SyncResult struct {
	Token    uint64
	Entries  []arsenal.CapabilityEntry
	Distinct int
	Err      error

	after func()
}

func NewSync(fetcher RosterFetcher, source EndpointSource, log *logbuf.Buffer, opts ...Option) (*Sync, error) {
	if fetcher == nil || source == nil || log == nil {
		return nil, errNilDependency
	}
	return &Sync{
		fetcher: fetcher,
		source:  source,
		log:     log,
		opts:    buildOptions(opts),
	}, nil
}

// Begin issues a sync against the current endpoint. It reports false, and
// does nothing, when no endpoint is configured. Overlapping syncs are
// allowed.
func (s *Sync) Begin() (*SyncTicket, bool) {
	ep := s.source.Endpoint()
	if !ep.Configured() {
		return nil, false
	}
	s.mu.Lock()
	s.issued++
	token := s.issued
	s.inFlight++
	s.mu.Unlock()

	s.opts.recorder.InFlight(WorkflowSync.String(), 1)
	s.opts.logger.Debug().Uint64("token", token).Str("url", ep.BaseURL).Msg("sync issued")
	return &SyncTicket{Token: token, Endpoint: ep, fetcher: s.fetcher}, true
}

// Run fetches and normalizes the roster. It is safe to call off the event
// loop.
func (t *SyncTicket) Run(ctx context.Context) SyncResult {
	res := SyncResult{Token: t.Token, after: t.after}
	roster, err := t.fetcher.FetchRoster(ctx, t.Endpoint)
	if err != nil {
		res.Err = err
		return res
	}
	res.Entries, res.Distinct = arsenal.NormalizeCounted(roster)
	return res
}

// Complete applies a finished sync. A failure leaves the list untouched;
// either way exactly one log entry is appended.
func (s *Sync) Complete(res SyncResult) {
	s.mu.Lock()
	if s.inFlight > 0 {
		s.inFlight--
	}
	applied := false
	if res.Err == nil && (s.opts.policy == LastCompleted || res.Token > s.applied) {
		s.list = res.Entries
		s.applied = res.Token
		s.lastSynced = time.Now()
		applied = true
	}
	count := len(s.list)
	s.mu.Unlock()

	s.opts.recorder.InFlight(WorkflowSync.String(), -1)
	switch {
	case res.Err != nil:
		s.log.Append(logbuf.KindFault, syncFaultText)
		s.opts.recorder.SyncCompleted(false, count)
		s.opts.logger.Warn().Err(res.Err).Uint64("token", res.Token).Msg("sync failed")
	case applied:
		s.log.Append(logbuf.KindInfo, fmt.Sprintf(syncOKFormat, res.Distinct))
		s.opts.recorder.SyncCompleted(true, count)
		s.opts.logger.Debug().Uint64("token", res.Token).Int("capabilities", count).Msg("sync applied")
	default:
		s.log.Append(logbuf.KindInfo, fmt.Sprintf(syncStaleFormat, res.Token))
		s.opts.logger.Debug().Uint64("token", res.Token).Msg("sync result superseded")
	}
	if res.after != nil {
		res.after()
	}
}

// SyncNow runs a whole sync on the calling goroutine. It reports whether a
// fetch was issued and succeeded.
func (s *Sync) SyncNow(ctx context.Context) bool {
	ticket, ok := s.Begin()
	if !ok {
		return false
	}
	res := ticket.Run(ctx)
	s.Complete(res)
	return res.Err == nil
}

// List returns a copy of the authoritative list.
func (s *Sync) List() []arsenal.CapabilityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]arsenal.CapabilityEntry, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Sync) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// LastSynced is the time the list was last replaced, or zero.
func (s *Sync) LastSynced() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

func (s *Sync) Policy() Policy {
	return s.opts.policy
}
