package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// DefaultTimeout bounds one publish of the publish loop.
const DefaultTimeout = 3 * time.Second

// Entry is the JSON value stored per team in the standings hash.
type Entry struct {
	TeamID       string `json:"team_id"`
	Label        string `json:"label,omitempty"`
	Name         string `json:"name,omitempty"`
	Rank         int    `json:"rank"`
	Solved       int    `json:"solved"`
	Penalty      int    `json:"penalty"`
	LastSolution int    `json:"last_solution"`
}

// NewClient connects to Redis. addr is either host:port or a redis:// URL.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.keys = NewKeyBuilder(prefix)
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// WithTimeout bounds each publish of the publish loop.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// Publisher writes the scoreboard of one contest to Redis.
//
// As a listener it only marks the scoreboard dirty and wakes its publish
// loop, so Redis round trips never run on the contest's delivery path.
// Bursts of changes coalesce into one publish.
type Publisher struct {
	rdb     *redis.Client
	source  *contest.Contest
	keys    KeyBuilder
	logger  *slog.Logger
	timeout time.Duration

	dirty  atomic.Bool
	signal chan struct{}

	// mu serializes publishes and guards seq.
	mu  sync.Mutex
	seq int64

	sub  contest.Subscription
	stop context.CancelFunc
	done chan struct{}
}

// New returns a publisher for source. Call Attach to publish on every
// ranking-affecting change.
func New(rdb *redis.Client, source *contest.Contest, opts ...Option) *Publisher {
	p := &Publisher{
		rdb:     rdb,
		source:  source,
		keys:    NewKeyBuilder(""),
		logger:  slog.Default(),
		timeout: DefaultTimeout,
		signal:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Keys returns the key builder in use.
func (p *Publisher) Keys() KeyBuilder {
	return p.keys
}

// Attach registers the publisher as a listener of its source and starts the
// publish loop. The loop runs until ctx is done or Detach is called.
func (p *Publisher) Attach(ctx context.Context) {
	ctx, p.stop = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.sub = p.source.AddListener(p)
	go p.run(ctx)
}

// Detach removes the listener, stops the loop and publishes any change the
// loop had not picked up yet.
func (p *Publisher) Detach() {
	p.source.RemoveListener(p.sub)
	if p.stop == nil {
		return
	}
	p.stop()
	<-p.done
	p.stop = nil

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		p.logger.Warn("final publish failed", "error", err)
	}
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.signal:
		}
		pctx, cancel := context.WithTimeout(ctx, p.timeout)
		if err := p.Flush(pctx); err != nil {
			p.logger.Error("error publishing scoreboard", "error", err)
		}
		cancel()
	}
}

// ContestChanged implements contest.Listener.
func (p *Publisher) ContestChanged(_ *contest.Contest, obj model.Object, _ model.Delta) error {
	if !affectsScoreboard(obj.Kind()) {
		return nil
	}
	p.dirty.Store(true)
	select {
	case p.signal <- struct{}{}:
	default:
	}
	return nil
}

func affectsScoreboard(k model.Kind) bool {
	switch k {
	case model.KindInfo, model.KindJudgementType, model.KindProblem, model.KindGroup,
		model.KindTeam, model.KindSubmission, model.KindJudgement:
		return true
	}
	return false
}

// Flush publishes if a change arrived since the last publish. When it
// returns, every change delivered before the call is in Redis.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty.Swap(false) {
		return nil
	}
	if err := p.publishLocked(ctx); err != nil {
		p.dirty.Store(true)
		return err
	}
	return nil
}

// Publish writes the current scoreboard unconditionally.
func (p *Publisher) Publish(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty.Store(false)
	if err := p.publishLocked(ctx); err != nil {
		p.dirty.Store(true)
		return err
	}
	return nil
}

// publishLocked writes one scoreboard snapshot, so order and standings
// always come from the same ranking. Called with mu held.
func (p *Publisher) publishLocked(ctx context.Context) error {
	sb := p.source.Scoreboard()
	members := make([]redis.Z, 0, len(sb.Rows))
	fields := make(map[string]any, len(sb.Rows))
	for pos, row := range sb.Rows {
		entry, err := json.Marshal(Entry{
			TeamID:       row.TeamID,
			Label:        row.Label,
			Name:         row.Name,
			Rank:         row.Rank,
			Solved:       row.Solved,
			Penalty:      row.Penalty,
			LastSolution: row.LastSolution,
		})
		if err != nil {
			return fmt.Errorf("publish %s: %w", row.TeamID, err)
		}
		members = append(members, redis.Z{Score: float64(pos), Member: row.TeamID})
		fields[row.TeamID] = string(entry)
	}

	seq := p.seq + 1
	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.keys.Order(), p.keys.Standings())
		if len(members) > 0 {
			pipe.ZAdd(ctx, p.keys.Order(), members...)
			pipe.HSet(ctx, p.keys.Standings(), fields)
		}
		pipe.Set(ctx, p.keys.Updated(), seq, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish scoreboard: %w", err)
	}
	p.seq = seq
	p.logger.Debug("scoreboard published", "contest", p.source.Name(), "teams", len(members), "seq", seq)
	return nil
}

// Seq returns the sequence number of the last successful publish.
func (p *Publisher) Seq() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Read returns the published order and standings. Used by tests and the
// CLI to inspect what readers see.
func Read(ctx context.Context, rdb *redis.Client, keys KeyBuilder) ([]Entry, error) {
	ids, err := rdb.ZRange(ctx, keys.Order(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := rdb.HMGet(ctx, keys.Standings(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read standings: %w", err)
	}
	out := make([]Entry, 0, len(ids))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("read standings: missing entry for %s", ids[i])
		}
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("read standings %s: %w", ids[i], err)
		}
		out = append(out, e)
	}
	return out, nil
}
