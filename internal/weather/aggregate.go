package weather

// Entry is one provider's outcome within a run: either a Reading or the
// error that stopped it.
type Entry struct {
	Provider ProviderName
	Location Location
	Reading  Reading
	Err      error
}

// OK reports whether the provider produced a reading.
func (e Entry) OK() bool {
	return e.Err == nil
}

// Result is the outcome of one aggregation run, one entry per requested
// provider, in request order. It is never persisted.
type Result struct {
	City    string
	RunID   string
	Entries []Entry
}

// Get returns the entry for name.
func (r *Result) Get(name ProviderName) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Provider == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Succeeded returns the number of providers that produced a reading.
func (r *Result) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of providers that failed.
func (r *Result) Failed() int {
	return len(r.Entries) - r.Succeeded()
}
