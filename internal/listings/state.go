package listings

import (
	"errors"

	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

// Status is the coarse lifecycle of the manager's view.
type Status int

// Status constants.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name, e.g. in JSON snapshots.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EditState tracks the edit flow: Closed -> Editing -> (Closed | Committing -> Closed).
type EditState int

// Edit state constants.
const (
	EditClosed EditState = iota
	EditOpen
	EditCommitting
)

func (s EditState) String() string {
	switch s {
	case EditClosed:
		return "closed"
	case EditOpen:
		return "editing"
	case EditCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// MarshalText renders the edit state name, e.g. in JSON snapshots.
func (s EditState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Pagination tracks the server-side paging window. TotalPages and
// TotalCount come from the last successful fetch and may lag local
// mutations until the next fetch.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int
	PageSize    int
}

// EditBuffer is a detached, mutable copy of a listing under edit. It never
// aliases the cache entry; Price stays as entered text until commit.
type EditBuffer struct {
	ID          domain.ID
	Title       string
	Price       string
	Description string
}

// Snapshot is a copy of the manager state for rendering. Mutating a
// snapshot has no effect on the manager.
type Snapshot struct {
	Status     Status
	ErrMsg     string // display message when Status == StatusError
	Listings   []domain.Listing
	Pagination Pagination
	EditState  EditState
	EditBuffer *EditBuffer // nil when no edit is live
}

// User-visible messages, kept word-for-word compatible with the web client.
const (
	msgNoToken       = "No token found. Please log in first."
	msgConnectFailed = "Failed to connect to server. Ensure backend is running."
	msgLoadFailed    = "Failed to load listings"
	msgDeleteFailed  = "Server error: Could not delete item."
	msgUpdateOK      = "Listing updated successfully!"
	msgUpdateFailed  = "Failed to update item on server."
	msgInvalidPrice  = "Price must be a valid number."

	confirmDelete = "Are you sure you want to delete this listing?"
)

// Validation errors raised before any network call is issued.
var (
	// ErrInvalidPage reports a page index below 1. Indices above the known
	// page count are not rejected client-side; the server owns that bound.
	ErrInvalidPage = errors.New("page index must be at least 1")

	// ErrInvalidPrice reports a non-numeric or negative price in the edit
	// buffer at commit time.
	ErrInvalidPrice = errors.New("price must be a non-negative number")

	// ErrNoEdit reports an edit operation with no edit in progress.
	ErrNoEdit = errors.New("no edit in progress")

	// ErrNotInPage reports an operation targeting a listing that is not in
	// the current page's cache.
	ErrNotInPage = errors.New("listing not in current page")
)
