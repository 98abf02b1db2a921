// Package listings implements the listing manager: the state machine that
// keeps the client's view of the seller's own posts reconciled with the
// remote listing service across paged fetches, optimistic deletion, and
// buffered edits.
//
// All state lives behind one mutex and is mutated only by the manager's
// own completion paths. Fetches are tagged with a generation counter and
// the page they were issued for; a response that is no longer the latest,
// or whose page no longer matches the current one, is discarded. That
// ordering discipline stands in for response-arrival ordering, which the
// runtime does not provide.
package listings

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/api/client"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/notify"
	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

const (
	defaultPageSize  = 6
	defaultOpTimeout = 15 * time.Second
)

// API is the slice of the remote listing service the manager consumes.
// *client.Client satisfies it.
type API interface {
	MyListings(ctx context.Context, page, pageSize int) (*client.ListingsPage, error)
	UpdateItem(ctx context.Context, id domain.ID, upd client.ItemUpdate) (*client.UpdateResult, error)
	DeleteItem(ctx context.Context, id domain.ID) error
}

// Manager orchestrates the seller's listing view. Construct with
// NewManager and drive it through the transition methods; read state via
// Snapshot.
type Manager struct {
	api      API
	tokens   client.TokenSource
	notifier notify.Notifier
	log      *slog.Logger
	pageSize int
	timeout  time.Duration

	mu         sync.Mutex
	status     Status
	errMsg     string
	cache      []domain.Listing
	pagination Pagination
	editState  EditState
	editBuf    EditBuffer
	fetchSeq   uint64 // generation tag of the latest issued fetch
}

// NewManager creates a Manager with injected collaborators. The token
// source is read once per request cycle, never mid-flow.
func NewManager(api API, tokens client.TokenSource, n notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		tokens:   tokens,
		notifier: n,
		log:      slog.Default(),
		pageSize: defaultPageSize,
		timeout:  defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.pagination = Pagination{CurrentPage: 1, PageSize: m.pageSize}
	return m
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithPageSize overrides the default page size.
func WithPageSize(size int) Option {
	return func(m *Manager) {
		m.pageSize = size
	}
}

// WithTimeout bounds each remote operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// Snapshot returns a copy of the current state for rendering.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Status:     m.status,
		ErrMsg:     m.errMsg,
		Listings:   append([]domain.Listing(nil), m.cache...),
		Pagination: m.pagination,
		EditState:  m.editState,
	}
	if m.editState != EditClosed {
		buf := m.editBuf
		snap.EditBuffer = &buf
	}
	return snap
}

// Refresh fetches the current page. Called on startup and as the only
// retry path after a failed fetch; there is no automatic retry.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.fetch(ctx)
}

// ChangePage moves to the given page and fetches it. Pages below 1 are
// rejected before any network call; pages beyond the known page count are
// left for the server to bounds-check.
func (m *Manager) ChangePage(ctx context.Context, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	m.mu.Lock()
	m.pagination.CurrentPage = page
	m.mu.Unlock()
	return m.fetch(ctx)
}

// Delete removes the listing after user confirmation. The cache entry is
// removed before the network call so the view reflects the removal with
// zero latency; on server failure the entry is restored at its original
// position and a one-shot alert is raised. TotalCount and TotalPages are
// not decremented locally; they stay stale until the next fetch.
func (m *Manager) Delete(ctx context.Context, id domain.ID) error {
	if !m.notifier.Confirm(confirmDelete) {
		return nil
	}

	m.mu.Lock()
	idx := slices.IndexFunc(m.cache, func(l domain.Listing) bool { return l.ID == id })
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotInPage
	}
	removed := m.cache[idx]
	m.cache = slices.Delete(slices.Clone(m.cache), idx, idx+1)
	m.mu.Unlock()

	opCtx, cancel := m.opCtx(ctx)
	defer cancel()
	if err := m.api.DeleteItem(opCtx, id); err != nil {
		m.restoreListing(removed, idx)
		m.notifier.Alert(msgDeleteFailed)
		m.log.Warn("delete failed on server", "id", id, "err", err)
		return err
	}

	m.log.Info("listing deleted", "id", id)
	return nil
}

// restoreListing puts a listing removed by an optimistic delete back into
// the cache after the server refused the deletion. The cache may have been
// replaced by a fetch in the meantime, so the index is clamped and the
// insert skipped if the entry is already present.
func (m *Manager) restoreListing(l domain.Listing, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.ContainsFunc(m.cache, func(c domain.Listing) bool { return c.ID == l.ID }) {
		return
	}
	if idx > len(m.cache) {
		idx = len(m.cache)
	}
	m.cache = slices.Insert(slices.Clone(m.cache), idx, l)
}

// fetch issues one request for the current page. The precondition is a
// present session token; without one the manager goes straight to the
// error state and no network call is made.
func (m *Manager) fetch(ctx context.Context) error {
	m.mu.Lock()
	if _, ok := m.tokens.Token(); !ok {
		m.status = StatusError
		m.errMsg = msgNoToken
		m.mu.Unlock()
		return client.ErrNoToken
	}

	m.status = StatusLoading
	m.errMsg = ""
	m.fetchSeq++
	seq := m.fetchSeq
	page := m.pagination.CurrentPage
	size := m.pageSize
	m.mu.Unlock()

	opCtx, cancel := m.opCtx(ctx)
	defer cancel()
	resp, err := m.api.MyListings(opCtx, page, size)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Stale-response guard: a newer fetch has been issued, or the current
	// page moved while this one was in flight.
	if seq != m.fetchSeq || page != m.pagination.CurrentPage {
		m.log.Debug("discarding stale fetch response", "page", page, "seq", seq)
		return nil
	}

	if err != nil {
		// Previous cache contents and pagination totals stay untouched.
		m.status = StatusError
		m.errMsg = fetchErrorMessage(err)
		m.log.Warn("fetch failed", "page", page, "err", err)
		return err
	}

	m.cache = append([]domain.Listing(nil), resp.Posts...)
	m.pagination.TotalCount = resp.TotalCount
	m.pagination.TotalPages = resp.TotalPages
	if maxPage := max(m.pagination.TotalPages, 1); m.pagination.CurrentPage > maxPage {
		// The server accepted an out-of-range page; clamp so the window
		// invariant holds. The (empty) page body is kept as fetched.
		m.pagination.CurrentPage = maxPage
		m.fetchSeq++ // anything still in flight for the old page is stale
	}
	m.status = StatusLoaded
	m.errMsg = ""
	m.log.Debug("page loaded", "page", page, "count", len(m.cache), "total", resp.TotalCount)
	return nil
}

func fetchErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return msgLoadFailed
	}
	// Network failure or malformed response.
	return msgConnectFailed
}

func (m *Manager) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return ctx, func() {}
}
