package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainObject is the hash domain for contest object identity.
// The version suffix leaves room for a future algorithm change.
const DomainObject = "cds/object/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the content hash of obj. The kind is part of the hashed
// material, so equal payloads of different kinds never collide.
func Hash(obj Object) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", KeyOf(obj), err)
	}
	return hashWithDomain(DomainObject+"/"+obj.Kind().String(), canonical), nil
}

// Equal reports whether a and b are the same value. Objects that cannot be
// canonicalized are never equal.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.ID() != b.ID() {
		return false
	}
	if IsDeletion(a) != IsDeletion(b) {
		return false
	}
	ca, err := MarshalCanonical(a)
	if err != nil {
		return false
	}
	cb, err := MarshalCanonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}
