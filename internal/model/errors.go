package model

import "errors"

// Pipeline error taxonomy. Only ErrIdentityNotFound surfaces as a hard
// failure to callers; everything else degrades (empty signal, fallback
// scoring, or a stale cached result).
var (
	// ErrIdentityNotFound means no channel could be resolved for the
	// supplied identifier. Fatal: no signal can be built at all.
	ErrIdentityNotFound = errors.New("channel identity not found")

	// ErrSourceUnavailable marks a per-source failure. Recovered by
	// degrading that source's feature to its empty/neutral value.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSynthesisUnavailable means the external scoring call failed or
	// returned an unparsable payload. Recovered by the fallback scorer.
	ErrSynthesisUnavailable = errors.New("synthesis unavailable")

	// ErrRateLimited specializes the above: the upstream asked us to back
	// off. Surfaced distinctly so callers can retry with intent.
	ErrRateLimited = errors.New("rate limited")
)
