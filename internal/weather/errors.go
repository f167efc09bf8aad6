package weather

import "errors"

var (
	// ErrConfiguration is returned when a city cannot be resolved to a
	// location for a provider.
	ErrConfiguration = errors.New("configuration error")

	// ErrNetwork covers connection failures, timeouts and non-success
	// responses while fetching a provider page.
	ErrNetwork = errors.New("network error")

	// ErrParse is returned when a provider page no longer has the expected
	// structure.
	ErrParse = errors.New("parse error")

	// ErrUnknownProvider is returned when a run names a provider that is not
	// registered. It fails the whole run.
	ErrUnknownProvider = errors.New("unknown provider")
)
