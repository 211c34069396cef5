// Package time carries nil-pointer helpers for optional timestamps
package time

import "time"

// Ptr returns a pointer to t, nil when t is the zero time
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Deref returns *t, or the zero time when t is nil
func Deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
