package storage

import "errors"

// ErrNotFound is returned by Resolve for references that do not map to a
// readable file.
var ErrNotFound = errors.New("storage: file not found")

// ProofStore persists uploaded images (payment proofs, expense receipts)
// and resolves stored references back to readable absolute paths. The rest
// of the system only ever sees opaque references.
type ProofStore interface {
	// Store writes the bytes under the given category ("proofs",
	// "receipts") and returns a retrievable reference.
	Store(data []byte, category string, originalName string) (string, error)
	// Resolve maps a reference produced by Store to an absolute readable
	// path, or ErrNotFound.
	Resolve(reference string) (string, error)
}
