package contest

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
	"github.com/roach88/cds/internal/store"
)

var (
	// ErrUnknownTeam is returned by team-keyed ranking queries for a team id
	// the contest does not hold.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrUnknownProblem is returned for a problem index out of range.
	ErrUnknownProblem = errors.New("unknown problem")
)

// HiddenPolicy decides how group membership maps to team visibility.
type HiddenPolicy int

const (
	// AllGroupsHidden hides a team only when every one of its groups is
	// hidden. A team without groups is visible.
	AllGroupsHidden HiddenPolicy = iota
	// AnyGroupHidden hides a team as soon as one of its groups is hidden.
	AnyGroupHidden
)

func (p HiddenPolicy) String() string {
	if p == AnyGroupHidden {
		return "any"
	}
	return "all"
}

// ParseHiddenPolicy maps "all" or "any" to a policy.
func ParseHiddenPolicy(s string) (HiddenPolicy, bool) {
	switch s {
	case "all", "":
		return AllGroupsHidden, true
	case "any":
		return AnyGroupHidden, true
	}
	return AllGroupsHidden, false
}

// Option configures a Contest.
type Option func(*Contest)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Contest) {
		c.logger = l
	}
}

// WithName labels the contest in log output.
func WithName(name string) Option {
	return func(c *Contest) {
		c.name = name
	}
}

// WithHiddenPolicy sets the team visibility rule.
func WithHiddenPolicy(p HiddenPolicy) Option {
	return func(c *Contest) {
		c.hidden = p
	}
}

// WithScoring sets the initial scoring mode. Default is ranking.Interim.
func WithScoring(m ranking.Mode) Option {
	return func(c *Contest) {
		c.mode.Store(int32(m))
	}
}

// WithoutHistory keeps only current values in the replay log.
func WithoutHistory() Option {
	return func(c *Contest) {
		c.storeOpts = append(c.storeOpts, store.WithoutHistory())
	}
}

// Contest holds the state of one contest.
type Contest struct {
	name      string
	logger    *slog.Logger
	hidden    HiddenPolicy
	storeOpts []store.Option
	mode      atomic.Int32

	// mu is the exclusive section for mutation and cache rebuilds.
	mu  sync.Mutex
	log *store.Log
	// orphans holds ids of submissions that a judgement references while the
	// submission itself is absent. Guarded by mu.
	orphans map[string]struct{}

	cache cache

	clock     *Clock
	out       outbox
	listeners registry
	modifiers modifierList

	lastEventTime atomic.Int64
	lastTimed     atomic.Pointer[timedMark]
}

// timedMark records the most recent timed object and the log length after
// it was added.
type timedMark struct {
	obj   model.Timed
	index int
}

// New creates an empty contest.
func New(opts ...Option) *Contest {
	c := &Contest{
		logger:  slog.Default(),
		orphans: make(map[string]struct{}),
		clock:   NewClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = store.New(c.storeOpts...)
	if c.name != "" {
		c.logger = c.logger.With("contest", c.name)
	}
	return c
}

// Name returns the label given with WithName.
func (c *Contest) Name() string {
	return c.name
}

// Logger returns the contest's logger.
func (c *Contest) Logger() *slog.Logger {
	return c.logger
}

// Add runs the modifiers over obj, stores the result and notifies
// observers. It returns the classification of the stored object; a vetoed
// or identical object yields NOOP.
//
// Observers see changes in the order they were accepted. If a delivery is
// already running, including one that called Add from a listener, Add
// returns once its change is queued and the running delivery passes it on.
func (c *Contest) Add(obj model.Object) model.Delta {
	if obj == nil {
		return model.NOOP
	}
	obj = c.modifiers.apply(c, obj)
	if obj == nil {
		return model.NOOP
	}

	c.mu.Lock()
	delta := c.log.Add(obj)
	if delta == model.NOOP {
		c.mu.Unlock()
		return model.NOOP
	}
	c.invalidate(obj, delta)
	c.trackTime(obj)
	c.out.push(delivery{
		seq:     c.clock.Next(),
		targets: c.listeners.snapshot(),
		obj:     obj,
		delta:   delta,
	})
	c.mu.Unlock()

	c.drain()
	return delta
}

// trackTime remembers the latest contest time seen on timed objects.
// Called with mu held.
func (c *Contest) trackTime(obj model.Object) {
	var timed model.Timed
	switch o := obj.(type) {
	case model.Submission:
		timed = o
	case model.Judgement:
		timed = o
	case model.Run:
		timed = o
	case model.Clarification:
		timed = o
	default:
		return
	}
	if t := timed.Time(); t.Known() {
		for {
			cur := c.lastEventTime.Load()
			if int64(t) <= cur || c.lastEventTime.CompareAndSwap(cur, int64(t)) {
				break
			}
		}
	}
	c.lastTimed.Store(&timedMark{obj: timed, index: c.log.Len()})
}

// ContestTimeOfLastEvent returns the largest contest time seen on a
// submission, judgement, run or clarification.
func (c *Contest) ContestTimeOfLastEvent() model.RelTime {
	return model.RelTime(c.lastEventTime.Load())
}

// LastTimedObject returns the most recently added timed object and the log
// length right after it was added.
func (c *Contest) LastTimedObject() (model.Timed, int) {
	m := c.lastTimed.Load()
	if m == nil {
		return nil, 0
	}
	return m.obj, m.index
}

// NumObjects returns the number of entries in the replay log.
func (c *Contest) NumObjects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Len()
}

// Remove drops the most recent stored version of obj. Observers are not
// notified; callers treat this as maintenance, not a live event.
func (c *Contest) Remove(obj model.Object) bool {
	if obj == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.log.Remove(obj) {
		return false
	}
	c.invalidate(obj, model.DELETE)
	return true
}

// RemoveSince truncates the log to its first mark entries. Every cache is
// invalidated. Observers are not notified.
func (c *Contest) RemoveSince(mark int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.RemoveSince(mark)
	c.invalidate(nil, model.DELETE)
}

// RemoveFromHistory scrubs every version of obj's identity. Observers are
// not notified.
func (c *Contest) RemoveFromHistory(obj model.Object) {
	if obj == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.log.RemoveFromHistory(obj) > 0 {
		c.invalidate(obj, model.DELETE)
	}
}

// Scoring returns the current scoring mode.
func (c *Contest) Scoring() ranking.Mode {
	return ranking.Mode(c.mode.Load())
}

// SetScoring switches the scoring mode and invalidates ranking data.
func (c *Contest) SetScoring(m ranking.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ranking.Mode(c.mode.Load()) == m {
		return
	}
	c.mode.Store(int32(m))
	c.cache.clearRanking()
}

// Finalize switches to official scoring and recomputes the ranking
// immediately, so the next read is a cache hit.
func (c *Contest) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode.Store(int32(ranking.Official))
	c.cache.clearRanking()
	c.rankingLocked()
	c.logger.Info("results finalized")
}
