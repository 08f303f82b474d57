package utils

func EmptyFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
