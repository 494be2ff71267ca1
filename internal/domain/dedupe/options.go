package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(d *inMemoryDeduper, initialCapacity *int)

// WithInitialCapacity presizes the registration map.
func WithInitialCapacity(n int) Option {
	return func(_ *inMemoryDeduper, initialCapacity *int) {
		if n > 0 {
			*initialCapacity = n
		}
	}
}

// WithOnChange installs a hook called with the new reference count every
// time a registration changes. It runs under the deduper's lock and must
// not call back into it.
func WithOnChange(fn func(id string, refs int)) Option {
	return func(d *inMemoryDeduper, _ *int) {
		d.onChange = fn
	}
}
