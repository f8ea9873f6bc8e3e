package storage

import "errors"

// Error taxonomy for the storage layer. Providers wrap the underlying cause
// with fmt.Errorf("...: %w", ...) around these sentinels so callers can
// branch with errors.Is. Provider errors propagate unchanged through the
// service façade.
var (
	// ErrInvalidArgument marks an empty or malformed tenant/patient identifier.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidTenantName marks a clinic ID whose derived container name
	// violates backend naming rules.
	ErrInvalidTenantName = errors.New("invalid tenant name")

	// ErrStorageUnavailable marks an unreachable backend. Safe to retry with
	// backoff; never means the document does not exist.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUploadFailed marks an upload that did not complete. No partial
	// state is left referencable.
	ErrUploadFailed = errors.New("upload failed")

	// ErrNotFound marks a genuinely absent object. Deletes map this to a
	// no-op instead; downloads and stats surface it.
	ErrNotFound = errors.New("document not found")

	// ErrDeleteFailed marks a delete rejected for a reason other than
	// "already absent".
	ErrDeleteFailed = errors.New("delete failed")
)
