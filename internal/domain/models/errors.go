package models

import "errors"

var (
	// ErrUpstreamUnavailable covers network errors, timeouts and non-2xx
	// responses from a market or news provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedPayload means a provider answered but a required field was missing.
	ErrMalformedPayload = errors.New("malformed upstream payload")

	// ErrNotTrained is returned by a classifier used before Train.
	ErrNotTrained = errors.New("sentiment classifier not trained")

	ErrUnknownStrategy = errors.New("unknown sentiment strategy")

	// ErrNoData is returned when nothing has been cached yet for a key.
	ErrNoData = errors.New("no data yet")
)
