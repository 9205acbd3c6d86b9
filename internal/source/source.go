package source

import (
	"context"
	"errors"
	"fmt"
)

// RemoteTask is one entry of a remote task collection. Absent or null
// fields decode to the zero value: an empty title and not completed.
// Any other fields in the payload are ignored.
type RemoteTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// RemoteTaskSource fetches a complete remote task collection.
type RemoteTaskSource interface {
	// FetchTasks returns the whole collection or a RemoteFetchError.
	FetchTasks(ctx context.Context) ([]RemoteTask, error)
}

// FetchFunc adapts a plain function to the RemoteTaskSource interface.
type FetchFunc func(ctx context.Context) ([]RemoteTask, error)

// FetchTasks calls f.
func (f FetchFunc) FetchTasks(ctx context.Context) ([]RemoteTask, error) {
	return f(ctx)
}

// RemoteFetchError indicates that the remote collection could not be
// retrieved: a transport failure, a non-2xx response or an unparseable body.
type RemoteFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	target := e.URL
	if target == "" {
		target = "remote tasks"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d: %v", target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", target, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// IsRemoteFetchError reports whether err (or any error in its chain) is a RemoteFetchError.
func IsRemoteFetchError(err error) bool {
	var fetchErr *RemoteFetchError
	return errors.As(err, &fetchErr)
}
