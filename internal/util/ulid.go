package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID returns a new lexically sortable id. ulid.Make uses a process-wide
// monotonic entropy source, so concurrent callers never collide.
func NewULID() string {
	return ulid.Make().String()
}
