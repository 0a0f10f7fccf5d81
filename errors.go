package tiercache

import (
	"errors"
	"fmt"
)

// ErrInvalidTTL is returned by Set/Warm for a negative per-call TTL.
// Zero means "unset" and resolves through the category table.
var ErrInvalidTTL = errors.New("tiercache: negative ttl")

// WarmError aggregates per-item failures of a warming run. Warming is
// best-effort and idempotent, so callers typically log this and re-run.
type WarmError struct {
	Failed int
	Total  int
	Errs   []error
}

func (e *WarmError) Error() string {
	return fmt.Sprintf("tiercache: warming failed for %d of %d items: %v",
		e.Failed, e.Total, errors.Join(e.Errs...))
}

func (e *WarmError) Unwrap() []error { return e.Errs }
