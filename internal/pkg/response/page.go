package response

// List wraps list endpoints so an empty result serializes as [] instead of null.
func List[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}
	return items
}
