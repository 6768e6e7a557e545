// Package errs defines the error taxonomy the service classifies failures
// into, by kind rather than by transport, per spec §7.
package errs

import "errors"

// Sentinel errors, compared with errors.Is. Wrap with fmt.Errorf("...: %w", ...)
// to add context while keeping the sentinel comparable.
var (
	// TransientInput covers shared-memory timeouts and short reads: the
	// caller should return an empty result without touching process state.
	TransientInput = errors.New("transient input")

	// EmptyDetection covers every "nothing to report" path inside the core:
	// no contours, no surviving candidates, a suppressed singleton, or an
	// empty best group.
	EmptyDetection = errors.New("empty detection")

	// ModelUnavailable means the textness network or OCR engine has not
	// been initialized; fatal for the request, the process stays up.
	ModelUnavailable = errors.New("model unavailable")

	// ConfigMalformed means the INI file was unreadable or partially
	// readable; callers proceed with defaults and log a warning.
	ConfigMalformed = errors.New("config malformed")

	// Downstream covers recognizer or translator failures; the core itself
	// is unaffected.
	Downstream = errors.New("downstream failure")
)
