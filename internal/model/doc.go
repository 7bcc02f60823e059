// Package model defines the contest objects carried by the event feed.
//
// Every object kind is a distinct struct implementing Object. The set of
// kinds is closed: Object has an unexported marker method, so filtering and
// ranking code switches exhaustively over concrete types instead of
// inspecting type tags.
//
// Objects are immutable values. Changing an entity means adding a new value
// with the same (Kind, ID) pair; the store treats that as an update. A
// Deletion is the tombstone for an identity.
//
// Identity comparison (used to detect no-op re-adds) goes through canonical
// JSON: RFC 8785 key ordering, NFC-normalized strings and SHA-256 with a
// domain prefix. See canonical.go and hash.go.
package model
