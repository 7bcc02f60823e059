package contest

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/cds/internal/model"
)

// Listener observes accepted changes.
type Listener interface {
	ContestChanged(c *Contest, obj model.Object, delta model.Delta) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c *Contest, obj model.Object, delta model.Delta) error

func (f ListenerFunc) ContestChanged(c *Contest, obj model.Object, delta model.Delta) error {
	return f(c, obj, delta)
}

// Subscription identifies a registered listener.
type Subscription struct {
	id uuid.UUID
}

func (s Subscription) String() string {
	return s.id.String()
}

type registration struct {
	sub      Subscription
	listener Listener
	failures atomic.Int64
}

// registry is the ordered listener list. It has its own lock; the contest
// takes it only while holding mu, never the other way round.
type registry struct {
	mu   sync.Mutex
	regs []*registration
}

func (r *registry) add(l Listener) *registration {
	reg := &registration{sub: Subscription{id: uuid.New()}, listener: l}
	r.mu.Lock()
	r.regs = append(r.regs, reg)
	r.mu.Unlock()
	return reg
}

func (r *registry) remove(sub Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.regs, func(reg *registration) bool { return reg.sub == sub })
	if i < 0 {
		return false
	}
	r.regs = slices.Delete(slices.Clone(r.regs), i, i+1)
	return true
}

// snapshot copies the list so delivery never iterates the live slice.
func (r *registry) snapshot() []*registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.regs)
}

func (r *registry) find(sub Subscription) *registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		if reg.sub == sub {
			return reg
		}
	}
	return nil
}

// AddListener registers l for changes accepted from now on.
func (c *Contest) AddListener(l Listener) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listeners.add(l).sub
}

// AddListenerFromStart registers l and first replays the whole log to it.
// The snapshot and the registration happen in the same exclusive section,
// so the listener sees every accepted change exactly once and in order.
// Replay runs before AddListenerFromStart returns unless another delivery
// is running; then the running delivery performs it.
func (c *Contest) AddListenerFromStart(l Listener) Subscription {
	c.mu.Lock()
	var history []replayed
	c.log.Iterate(func(obj model.Object, delta model.Delta) {
		history = append(history, replayed{obj: obj, delta: delta})
	})
	reg := c.listeners.add(l)
	c.out.push(delivery{
		seq:     c.clock.Next(),
		targets: []*registration{reg},
		replay:  history,
	})
	c.mu.Unlock()

	c.drain()
	return reg.sub
}

// RemoveListener unregisters a listener. Deliveries already in flight may
// still reach it.
func (c *Contest) RemoveListener(sub Subscription) bool {
	return c.listeners.remove(sub)
}

// ListenerFailures returns how many deliveries to sub failed or panicked.
func (c *Contest) ListenerFailures(sub Subscription) int64 {
	reg := c.listeners.find(sub)
	if reg == nil {
		return 0
	}
	return reg.failures.Load()
}

// drain delivers queued changes until the outbox is empty. It returns at
// once if another call is already draining.
func (c *Contest) drain() {
	if !c.out.claim() {
		return
	}
	for {
		d, ok := c.out.next()
		if !ok {
			return
		}
		c.deliver(d)
	}
}

func (c *Contest) deliver(d delivery) {
	if d.obj == nil {
		for _, reg := range d.targets {
			for _, h := range d.replay {
				c.notifyOne(reg, d.seq, h.obj, h.delta)
			}
		}
		return
	}
	for _, reg := range d.targets {
		c.notifyOne(reg, d.seq, d.obj, d.delta)
	}
}

// PendingDeliveries returns how many accepted changes are queued but not
// yet delivered.
func (c *Contest) PendingDeliveries() int {
	return c.out.pending()
}

// notifyOne calls one listener, converting a panic into a recorded failure.
func (c *Contest) notifyOne(reg *registration, seq int64, obj model.Object, delta model.Delta) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("listener panic: %v", r)
			}
		}()
		return reg.listener.ContestChanged(c, obj, delta)
	}()
	if err != nil {
		reg.failures.Add(1)
		c.logger.Error("error notifying listener",
			"subscription", reg.sub.String(),
			"seq", seq,
			"object", model.KeyOf(obj).String(),
			"delta", delta.String(),
			"error", err,
		)
	}
}

// Modifier rewrites an incoming object before it is stored. Returning nil
// vetoes the add.
type Modifier func(c *Contest, obj model.Object) model.Object

// ModifierID identifies a registered modifier.
type ModifierID struct {
	id uuid.UUID
}

type modifierReg struct {
	id ModifierID
	fn Modifier
}

type modifierList struct {
	mu   sync.Mutex
	mods []modifierReg
}

// AddModifier registers fn. Modifiers run in registration order, each on
// the previous one's output.
func (c *Contest) AddModifier(fn Modifier) ModifierID {
	id := ModifierID{id: uuid.New()}
	c.modifiers.mu.Lock()
	c.modifiers.mods = append(c.modifiers.mods, modifierReg{id: id, fn: fn})
	c.modifiers.mu.Unlock()
	return id
}

// RemoveModifier unregisters a modifier.
func (c *Contest) RemoveModifier(id ModifierID) bool {
	m := &c.modifiers
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.mods, func(r modifierReg) bool { return r.id == id })
	if i < 0 {
		return false
	}
	m.mods = slices.Delete(slices.Clone(m.mods), i, i+1)
	return true
}

// apply runs every modifier over obj. A panicking modifier is logged and
// skipped; its input passes through unchanged.
func (m *modifierList) apply(c *Contest, obj model.Object) model.Object {
	m.mu.Lock()
	mods := slices.Clone(m.mods)
	m.mu.Unlock()

	for _, mod := range mods {
		if obj == nil {
			return nil
		}
		obj = runModifier(c, mod.fn, obj)
	}
	return obj
}

func runModifier(c *Contest, fn Modifier, obj model.Object) (out model.Object) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error notifying modifier",
				"object", model.KeyOf(obj).String(),
				"error", fmt.Sprint(r),
			)
			out = obj
		}
	}()
	return fn(c, obj)
}
