package utils

import "strings"

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// JoinNonNil joins the non-empty dereferenced parts with sep. Platform name fields are nullable.
func JoinNonNil(sep string, parts ...*string) string {
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(Value(p)); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
