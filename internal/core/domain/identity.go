package domain

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
)

// Identity is the stable key used to address cache and session state for
// a document. It is derived from the raw source URL string, not the
// document bytes: two byte-identical URLs are the same document, while
// differently-signed URLs for the same blob are deliberately distinct
// (content hashing would require a full download before any cache-hit
// decision).
type Identity string

// IdentityFromURL derives the 128-bit hex identity for a source URL.
func IdentityFromURL(url string) Identity {
	sum := md5.Sum([]byte(url)) //nolint:gosec // content addressing, not security
	return Identity(hex.EncodeToString(sum[:]))
}

// String returns the hex digest.
func (id Identity) String() string { return string(id) }
