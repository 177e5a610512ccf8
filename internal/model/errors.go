package model

import (
	"fmt"
	"time"
)

// CollectorError is a per-collector failure. It is absorbed into the
// snapshot as a failed Reading and never aborts assembly.
type CollectorError struct {
	Collector string
	Err       error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collector %s: %v", e.Collector, e.Err)
}

func (e *CollectorError) Unwrap() error { return e.Err }

// TimeoutError marks a collector that did not finish within its bound.
// Like CollectorError it is absorbed into the snapshot.
type TimeoutError struct {
	Collector string
	Limit     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("collector %s: timed out after %s", e.Collector, e.Limit)
}

// SerializationError is fatal to the current operation.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// AuthenticationError means decryption failed or a keyed integrity tag did
// not verify. The file must be treated as untrustworthy: wrong passphrase
// or tampering, the caller cannot tell which.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// IntegrityError means the plaintext integrity tag did not match. For
// unkeyed artifacts this detects corruption only, not tampering.
type IntegrityError struct{}

func (e *IntegrityError) Error() string {
	return "integrity check failed: snapshot bytes do not match stored tag"
}

// SchemaError marks a version or mode incompatibility. Loading and
// comparison refuse to proceed rather than attempt a best-effort result.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema mismatch: " + e.Reason
}

// StorageError wraps filesystem-level failures during save or load. The
// underlying cause is preserved so errors.Is(err, fs.ErrNotExist) and
// fs.ErrPermission keep working.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
