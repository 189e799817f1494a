package collect

import "fmt"

// FileTooLargeError is returned when a requested file exceeds the
// per-file byte ceiling. The file is never silently truncated.
type FileTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, exceeding the %d-byte limit", e.Path, e.Size, e.Limit)
}
