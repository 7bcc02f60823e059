package model

// Object is a contest object carried by the event feed.
//
// The set of implementations is closed (see the unexported marker method).
// Implementations are plain value types and must be treated as immutable.
type Object interface {
	Kind() Kind
	ID() string
	object()
}

// Key is the identity of an object inside a store.
type Key struct {
	Kind Kind
	ID   string
}

// KeyOf returns the identity of obj.
func KeyOf(obj Object) Key {
	return Key{Kind: obj.Kind(), ID: obj.ID()}
}

func (k Key) String() string {
	return k.Kind.String() + "/" + k.ID
}

// Deletion is the tombstone for an identity. Adding it to a store removes
// the current value of that identity.
type Deletion struct {
	Of       Kind
	ObjectID string
}

func (d Deletion) Kind() Kind { return d.Of }
func (d Deletion) ID() string { return d.ObjectID }
func (Deletion) object() {}

// IsDeletion reports whether obj is a tombstone.
func IsDeletion(obj Object) bool {
	_, ok := obj.(Deletion)
	return ok
}

// Timed is implemented by objects that carry a contest-relative time.
type Timed interface {
	Object
	Time() RelTime
}
