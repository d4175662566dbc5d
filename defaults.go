package linkpreview

// coalesce resolves an Options field against its default: a zero-valued
// field means "not set". Negative numeric fields mean "disabled" and are
// handled by the callers that accept them.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
