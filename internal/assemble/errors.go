package assemble

import "fmt"

// ContextTooLargeError aborts a whole request when the composed
// document exceeds the aggregate ceiling. Nothing is written — a
// silently truncated document would look complete without being
// complete.
type ContextTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *ContextTooLargeError) Error() string {
	return fmt.Sprintf("assembled context is %d bytes, exceeding the %d-byte limit", e.Size, e.Limit)
}

// NoteNotFoundError is returned when a requested context dump's source
// document does not exist. Request-fatal: a missing referenced note is
// a caller error worth surfacing immediately, not omitting silently.
type NoteNotFoundError struct {
	File string
}

func (e *NoteNotFoundError) Error() string {
	return fmt.Sprintf("context dump source %q not found", e.File)
}
