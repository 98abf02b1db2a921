package listings

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/api/client"
	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

// OpenEdit copies the target listing's fields into the edit buffer and
// opens the edit flow. At most one buffer is live; opening while an edit
// is already open overwrites it (last writer wins).
func (m *Manager) OpenEdit(id domain.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.cache {
		if m.cache[i].ID == id {
			m.editBuf = EditBuffer{
				ID:          m.cache[i].ID,
				Title:       m.cache[i].Title,
				Price:       strconv.FormatFloat(m.cache[i].Price, 'f', -1, 64),
				Description: m.cache[i].Description,
			}
			m.editState = EditOpen
			return nil
		}
	}
	return ErrNotInPage
}

// Draft applies fn to the live edit buffer. Keystroke-level changes go
// through here; they never touch the cache entry.
func (m *Manager) Draft(fn func(*EditBuffer)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.editState != EditOpen {
		return ErrNoEdit
	}
	fn(&m.editBuf)
	return nil
}

// CancelEdit discards the buffer and closes the edit flow. The cache is
// untouched.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.editBuf = EditBuffer{}
	m.editState = EditClosed
}

// CommitEdit validates the buffer and sends the update. The price text
// must parse as a non-negative number or the commit is rejected before any
// network call. Only the server-mutable fields travel in the body; the id
// is the request target. On success the returned (or locally echoed)
// fields are merged into the matching cache entry and the flow closes; on
// failure the flow stays open with the buffer intact so the user can retry
// without re-entering data.
func (m *Manager) CommitEdit(ctx context.Context) error {
	m.mu.Lock()
	if m.editState != EditOpen {
		m.mu.Unlock()
		return ErrNoEdit
	}
	buf := m.editBuf

	price, err := strconv.ParseFloat(strings.TrimSpace(buf.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		m.mu.Unlock()
		m.notifier.Alert(msgInvalidPrice)
		return ErrInvalidPrice
	}
	m.editState = EditCommitting
	m.mu.Unlock()

	upd := client.ItemUpdate{
		Title:       buf.Title,
		Price:       price,
		Description: buf.Description,
	}

	opCtx, cancel := m.opCtx(ctx)
	defer cancel()
	result, err := m.api.UpdateItem(opCtx, buf.ID, upd)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.editState = EditOpen
		m.notifier.Alert(updateFailureMessage(err))
		m.log.Warn("update failed", "id", buf.ID, "err", err)
		return err
	}

	merged := domain.Listing{
		ID:          buf.ID,
		Title:       upd.Title,
		Price:       upd.Price,
		Description: upd.Description,
	}
	if result.Listing != nil {
		merged = *result.Listing
		merged.ID = buf.ID
	}
	for i := range m.cache {
		if m.cache[i].ID == buf.ID {
			if merged.ImageURLs == nil {
				merged.ImageURLs = m.cache[i].ImageURLs
			}
			m.cache[i] = merged
			break
		}
	}

	m.editBuf = EditBuffer{}
	m.editState = EditClosed
	m.notifier.Alert(msgUpdateOK)
	m.log.Info("listing updated", "id", buf.ID)
	return nil
}

// updateFailureMessage picks the alert for a failed commit: the
// server-provided message when one exists, else the generic failure text.
func updateFailureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUpdateFailed
}
