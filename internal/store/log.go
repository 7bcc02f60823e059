package store

import (
	"github.com/roach88/cds/internal/model"
)

// entry is one accepted add as recorded in the replay log.
type entry struct {
	obj   model.Object
	delta model.Delta
}

// Option configures a Log.
type Option func(*Log)

// WithoutHistory keeps only current values in the replay log.
func WithoutHistory() Option {
	return func(l *Log) {
		l.history = false
	}
}

// Log is an ordered collection of contest objects keyed by (kind, id).
type Log struct {
	history bool
	entries []entry

	// latest maps a live key to the entry holding its current value.
	latest map[model.Key]int

	// ids holds the live ids of each kind in first-arrival order; pos is the
	// position of a key inside its kind's slice.
	ids [model.NumKinds][]string
	pos map[model.Key]int
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{history: true}
	for _, opt := range opts {
		opt(l)
	}
	l.reset()
	return l
}

func (l *Log) reset() {
	l.entries = make([]entry, 0, 256)
	l.latest = make(map[model.Key]int)
	l.pos = make(map[model.Key]int)
	for k := range l.ids {
		l.ids[k] = nil
	}
}

// KeepsHistory reports whether superseded versions are retained.
func (l *Log) KeepsHistory() bool {
	return l.history
}

// Add stores obj and returns how it changed the log.
func (l *Log) Add(obj model.Object) model.Delta {
	if obj == nil {
		return model.NOOP
	}
	key := model.KeyOf(obj)
	at, live := l.latest[key]

	if model.IsDeletion(obj) {
		if !live {
			return model.NOOP
		}
		l.removeID(key)
		delete(l.latest, key)
		if l.history {
			l.entries = append(l.entries, entry{obj: obj, delta: model.DELETE})
		} else {
			l.dropEntry(at)
		}
		return model.DELETE
	}

	if live && model.Equal(l.entries[at].obj, obj) {
		return model.NOOP
	}

	delta := model.ADD
	if live {
		delta = model.UPDATE
	} else {
		l.pos[key] = len(l.ids[key.Kind])
		l.ids[key.Kind] = append(l.ids[key.Kind], key.ID)
	}

	if live && !l.history {
		l.entries[at].obj = obj
		return delta
	}
	l.latest[key] = len(l.entries)
	l.entries = append(l.entries, entry{obj: obj, delta: delta})
	return delta
}

// removeID drops key from its kind's live id list.
func (l *Log) removeID(key model.Key) {
	i, ok := l.pos[key]
	if !ok {
		return
	}
	ids := l.ids[key.Kind]
	copy(ids[i:], ids[i+1:])
	ids = ids[:len(ids)-1]
	l.ids[key.Kind] = ids
	delete(l.pos, key)
	for j := i; j < len(ids); j++ {
		l.pos[model.Key{Kind: key.Kind, ID: ids[j]}] = j
	}
}

// dropEntry removes entries[at] and shifts the latest index of later entries.
func (l *Log) dropEntry(at int) {
	copy(l.entries[at:], l.entries[at+1:])
	l.entries = l.entries[:len(l.entries)-1]
	for key, i := range l.latest {
		if i > at {
			l.latest[key] = i - 1
		}
	}
}

// Get returns the current value for (kind, id), or nil.
func (l *Log) Get(kind model.Kind, id string) model.Object {
	at, ok := l.latest[model.Key{Kind: kind, ID: id}]
	if !ok {
		return nil
	}
	return l.entries[at].obj
}

// ByType returns a snapshot of the current values of kind in first-arrival
// order. The slice is owned by the caller.
func (l *Log) ByType(kind model.Kind) []model.Object {
	if kind < 0 || kind >= model.NumKinds {
		return nil
	}
	ids := l.ids[kind]
	out := make([]model.Object, len(ids))
	for i, id := range ids {
		out[i] = l.entries[l.latest[model.Key{Kind: kind, ID: id}]].obj
	}
	return out
}

// Count returns the number of live objects of kind.
func (l *Log) Count(kind model.Kind) int {
	if kind < 0 || kind >= model.NumKinds {
		return 0
	}
	return len(l.ids[kind])
}

// IndexOf returns the position of (kind, id) in ByType(kind), or -1.
func (l *Log) IndexOf(kind model.Kind, id string) int {
	i, ok := l.pos[model.Key{Kind: kind, ID: id}]
	if !ok {
		return -1
	}
	return i
}

// Len returns the number of entries in the replay log. The value is a mark
// usable with RemoveSince.
func (l *Log) Len() int {
	return len(l.entries)
}

// Iterate replays the log in arrival order. Each entry is passed with the
// classification it had when it was accepted. Without history every live
// value is replayed once as an ADD.
func (l *Log) Iterate(fn func(obj model.Object, delta model.Delta)) {
	for _, e := range l.entries {
		fn(e.obj, e.delta)
	}
}

// Objects returns the live values in the order their current version
// arrived.
func (l *Log) Objects() []model.Object {
	out := make([]model.Object, 0, len(l.latest))
	for i, e := range l.entries {
		if at, ok := l.latest[model.KeyOf(e.obj)]; ok && at == i {
			out = append(out, e.obj)
		}
	}
	return out
}

// RemoveSince truncates the replay log to its first mark entries and
// rebuilds the current values from what remains.
func (l *Log) RemoveSince(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark >= len(l.entries) {
		return
	}
	l.rebuild(l.entries[:mark])
}

// RemoveFromHistory scrubs every version of the given identities from the
// log, as if they had never been added. It returns the number of entries
// dropped.
func (l *Log) RemoveFromHistory(objs ...model.Object) int {
	if len(objs) == 0 {
		return 0
	}
	keys := make(map[model.Key]struct{}, len(objs))
	for _, obj := range objs {
		if obj != nil {
			keys[model.KeyOf(obj)] = struct{}{}
		}
	}
	kept := make([]entry, 0, len(l.entries))
	for _, e := range l.entries {
		if _, drop := keys[model.KeyOf(e.obj)]; !drop {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	if removed > 0 {
		l.rebuild(kept)
	}
	return removed
}

// Remove drops the most recent entry equal to obj. The identity falls back
// to its previous retained version, if any. It reports whether an entry was
// found.
func (l *Log) Remove(obj model.Object) bool {
	if obj == nil {
		return false
	}
	key := model.KeyOf(obj)
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if model.KeyOf(e.obj) != key || model.IsDeletion(e.obj) != model.IsDeletion(obj) {
			continue
		}
		if !model.Equal(e.obj, obj) {
			continue
		}
		kept := make([]entry, 0, len(l.entries)-1)
		kept = append(kept, l.entries[:i]...)
		kept = append(kept, l.entries[i+1:]...)
		l.rebuild(kept)
		return true
	}
	return false
}

// rebuild resets the log and re-adds the objects of entries in order, so
// classifications are recomputed against the surviving history.
func (l *Log) rebuild(entries []entry) {
	objs := make([]model.Object, len(entries))
	for i, e := range entries {
		objs[i] = e.obj
	}
	l.reset()
	for _, obj := range objs {
		l.Add(obj)
	}
}
