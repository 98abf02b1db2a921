package listings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/api/client"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/notify"
	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/session"
	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

// fakeAPI implements API with pluggable behavior per operation.
type fakeAPI struct {
	mu          sync.Mutex
	listCalls   int
	updateCalls int
	deleteCalls int

	listFn   func(ctx context.Context, page, size int) (*client.ListingsPage, error)
	updateFn func(ctx context.Context, id domain.ID, upd client.ItemUpdate) (*client.UpdateResult, error)
	deleteFn func(ctx context.Context, id domain.ID) error
}

func (f *fakeAPI) MyListings(ctx context.Context, page, size int) (*client.ListingsPage, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected MyListings call")
	}
	return fn(ctx, page, size)
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id domain.ID, upd client.ItemUpdate) (*client.UpdateResult, error) {
	f.mu.Lock()
	f.updateCalls++
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected UpdateItem call")
	}
	return fn(ctx, id, upd)
}

func (f *fakeAPI) DeleteItem(ctx context.Context, id domain.ID) error {
	f.mu.Lock()
	f.deleteCalls++
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return errors.New("unexpected DeleteItem call")
	}
	return fn(ctx, id)
}

func (f *fakeAPI) calls() (list, update, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.updateCalls, f.deleteCalls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(api API, opts ...Option) (*Manager, *notify.Recorder) {
	rec := &notify.Recorder{Answer: true}
	opts = append([]Option{WithLogger(testLogger()), WithTimeout(5 * time.Second)}, opts...)
	return NewManager(api, session.Static("tok"), rec, opts...), rec
}

func listingsPage(totalCount, page, pageSize, totalPages int, posts ...domain.Listing) *client.ListingsPage {
	return &client.ListingsPage{
		Posts: posts,
		PageInfo: domain.PageInfo{
			TotalCount: totalCount,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

func post(id domain.ID, title string, price float64) domain.Listing {
	return domain.Listing{ID: id, Title: title, Price: price}
}

func TestRefresh_NoTokenSkipsNetwork(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	rec := &notify.Recorder{}
	m := NewManager(api, session.Static(""), rec, WithLogger(testLogger()))

	err := m.Refresh(context.Background())
	require.ErrorIs(t, err, client.ErrNoToken)

	snap := m.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "No token found. Please log in first.", snap.ErrMsg)

	list, _, _ := api.calls()
	assert.Zero(t, list, "no network call may be attempted without a token")
}

func TestRefresh_LoadsPage(t *testing.T) {
	t.Parallel()

	// Page 1 of 2 with page_size 6: six posts, eight total.
	posts := []domain.Listing{
		post("1", "Vintage Film Camera", 150),
		post("2", "CS Textbook", 45),
		post("3", "Desk Lamp", 12),
		post("4", "Bike Helmet", 20),
		post("5", "Monitor Stand", 18),
		post("6", "Mechanical Keyboard", 65),
	}
	api := &fakeAPI{
		listFn: func(_ context.Context, page, size int) (*client.ListingsPage, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 6, size)
			return listingsPage(8, 1, 6, 2, posts...), nil
		},
	}
	m, _ := newTestManager(api)

	require.NoError(t, m.Refresh(context.Background()))

	snap := m.Snapshot()
	assert.Equal(t, StatusLoaded, snap.Status)
	assert.Empty(t, snap.ErrMsg)
	assert.Len(t, snap.Listings, 6)
	assert.LessOrEqual(t, len(snap.Listings), snap.Pagination.PageSize)
	assert.Equal(t, 1, snap.Pagination.CurrentPage)
	assert.Equal(t, 2, snap.Pagination.TotalPages)
	assert.Equal(t, 8, snap.Pagination.TotalCount)

	seen := make(map[domain.ID]bool, len(snap.Listings))
	for _, l := range snap.Listings {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
}

func TestRefresh_FailurePreservesCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "server rejection",
			err:     &client.APIError{StatusCode: 500, Message: "boom"},
			wantMsg: "Failed to load listings",
		},
		{
			name:    "network failure",
			err:     &client.ConnError{BaseURL: "http://x", Err: errors.New("connection refused")},
			wantMsg: "Failed to connect to server. Ensure backend is running.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			healthy := true
			api := &fakeAPI{}
			api.listFn = func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
				if healthy {
					return listingsPage(2, 1, 6, 1, post("1", "Lamp", 12), post("2", "Chair", 30)), nil
				}
				return nil, tt.err
			}
			m, _ := newTestManager(api)

			require.NoError(t, m.Refresh(context.Background()))
			healthy = false
			require.Error(t, m.Refresh(context.Background()))

			snap := m.Snapshot()
			assert.Equal(t, StatusError, snap.Status)
			assert.Equal(t, tt.wantMsg, snap.ErrMsg)
			// Previously loaded data survives the failed cycle.
			assert.Len(t, snap.Listings, 2)
			assert.Equal(t, 2, snap.Pagination.TotalCount)
			assert.Equal(t, 1, snap.Pagination.TotalPages)
		})
	}
}

func TestChangePage_RejectsBelowOne(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	m, _ := newTestManager(api)

	err := m.ChangePage(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidPage)

	list, _, _ := api.calls()
	assert.Zero(t, list)
}

func TestChangePage_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()

	// Page 1's response is held back until after page 2's has been
	// applied; it must then be discarded, leaving page 2's data in place.
	page1Started := make(chan struct{})
	releasePage1 := make(chan struct{})

	api := &fakeAPI{
		listFn: func(_ context.Context, page, _ int) (*client.ListingsPage, error) {
			switch page {
			case 1:
				close(page1Started)
				<-releasePage1
				return listingsPage(8, 1, 6, 2, post("old", "Stale Item", 1)), nil
			default:
				return listingsPage(8, 2, 6, 2, post("new", "Fresh Item", 2)), nil
			}
		},
	}
	m, _ := newTestManager(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Discarded responses surface no error.
		assert.NoError(t, m.ChangePage(context.Background(), 1))
	}()

	<-page1Started
	require.NoError(t, m.ChangePage(context.Background(), 2))
	close(releasePage1)
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, StatusLoaded, snap.Status)
	assert.Equal(t, 2, snap.Pagination.CurrentPage)
	require.Len(t, snap.Listings, 1)
	assert.Equal(t, domain.ID("new"), snap.Listings[0].ID)
}

func TestChangePage_OutOfRangeClamped(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		listFn: func(_ context.Context, page, _ int) (*client.ListingsPage, error) {
			// The server answers an over-range page with an empty body and
			// the true page count.
			return listingsPage(8, page, 6, 2), nil
		},
	}
	m, _ := newTestManager(api)

	require.NoError(t, m.ChangePage(context.Background(), 9))

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.Pagination.CurrentPage)
	assert.Empty(t, snap.Listings)
}

func TestDelete_OptimisticRemoval(t *testing.T) {
	t.Parallel()

	deleteStarted := make(chan struct{})
	releaseDelete := make(chan struct{})

	api := &fakeAPI{
		listFn: func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
			return listingsPage(2, 1, 6, 1, post("42", "Lamp", 12), post("43", "Chair", 30)), nil
		},
		deleteFn: func(_ context.Context, id domain.ID) error {
			close(deleteStarted)
			<-releaseDelete
			return nil
		},
	}
	m, rec := newTestManager(api)
	require.NoError(t, m.Refresh(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Delete(context.Background(), "42"))
	}()

	// The entry is gone while the request is still in flight.
	<-deleteStarted
	snap := m.Snapshot()
	require.Len(t, snap.Listings, 1)
	assert.Equal(t, domain.ID("43"), snap.Listings[0].ID)

	close(releaseDelete)
	wg.Wait()

	assert.Equal(t, []string{"Are you sure you want to delete this listing?"}, rec.Prompts())
	assert.Empty(t, rec.Alerts())
}

func TestDelete_DeclinedDoesNothing(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		listFn: func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
			return listingsPage(1, 1, 6, 1, post("42", "Lamp", 12)), nil
		},
	}
	rec := &notify.Recorder{Answer: false}
	m := NewManager(api, session.Static("tok"), rec, WithLogger(testLogger()))
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Delete(context.Background(), "42"))

	snap := m.Snapshot()
	assert.Len(t, snap.Listings, 1)
	_, _, del := api.calls()
	assert.Zero(t, del)
}

func TestDelete_ServerFailureRestoresEntry(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		listFn: func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
			return listingsPage(3, 1, 6, 1,
				post("41", "Desk", 80), post("42", "Lamp", 12), post("43", "Chair", 30)), nil
		},
		deleteFn: func(_ context.Context, _ domain.ID) error {
			return &client.APIError{StatusCode: 500}
		},
	}
	m, rec := newTestManager(api)
	require.NoError(t, m.Refresh(context.Background()))

	err := m.Delete(context.Background(), "42")
	require.Error(t, err)

	assert.Equal(t, []string{"Server error: Could not delete item."}, rec.Alerts())

	// The entry comes back at its original position so the page does not
	// misreport server state, and the totals are untouched.
	snap := m.Snapshot()
	require.Len(t, snap.Listings, 3)
	assert.Equal(t, domain.ID("42"), snap.Listings[1].ID)
	assert.Equal(t, 3, snap.Pagination.TotalCount)
}

func TestDelete_UnknownID(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		listFn: func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
			return listingsPage(1, 1, 6, 1, post("42", "Lamp", 12)), nil
		},
	}
	m, _ := newTestManager(api)
	require.NoError(t, m.Refresh(context.Background()))

	err := m.Delete(context.Background(), "404")
	require.ErrorIs(t, err, ErrNotInPage)

	_, _, del := api.calls()
	assert.Zero(t, del)
}

func TestDelete_CountStaysStale(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		listFn: func(_ context.Context, _, _ int) (*client.ListingsPage, error) {
			return listingsPage(8, 1, 6, 2, post("42", "Lamp", 12), post("43", "Chair", 30)), nil
		},
		deleteFn: func(_ context.Context, _ domain.ID) error { return nil },
	}
	m, _ := newTestManager(api)
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Delete(context.Background(), "42"))

	// Totals lag until the next fetch; only the cache shrinks.
	snap := m.Snapshot()
	assert.Len(t, snap.Listings, 1)
	assert.Equal(t, 8, snap.Pagination.TotalCount)
	assert.Equal(t, 2, snap.Pagination.TotalPages)
}
