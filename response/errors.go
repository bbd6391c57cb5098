package response

import "fmt"

// BadResponseError covers everything the service did wrong at the protocol
// level: non-2xx status, malformed envelope, unrecognized state strings, or
// an explicit rejection of the request.
type BadResponseError struct {
	Status int
	Body   string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad response (status %d): %s", e.Status, e.Body)
}

// ResourceNotFoundError means the service explicitly reported a singular
// resource as absent. Kept distinct from BadResponseError so callers can
// branch on "doesn't exist" vs "something is wrong".
type ResourceNotFoundError struct {
	Resource string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Resource)
}
