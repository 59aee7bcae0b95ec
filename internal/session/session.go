// Package session holds the authenticated shop session and its durable
// client-side store. The session is process-wide state: only the auth flow
// writes it, every other component treats it as read-only.
package session

import "context"

// Session is the authenticated state for the selected shop. Either
// DisplayName (Google sign-in) or Username (password sign-in) is set,
// never both.
type Session struct {
	Token         string
	Refresh       string
	ShopID        string
	ShopName      string
	DisplayName   string
	Username      string
	Authenticated bool
}

// HasShop reports whether a shop has been selected.
func (s Session) HasShop() bool {
	return s.ShopID != ""
}

// FilterSnapshot is the per-report-family filter state persisted so a
// report screen can restore pagination and search after a detour through a
// detail view.
type FilterSnapshot struct {
	Page     int
	PageSize int
	Search   string
}

// Store persists the session, UI preferences and filter snapshots across
// invocations.
type Store interface {
	Session(ctx context.Context) (Session, error)
	SaveSession(ctx context.Context, s Session) error
	// Clear wipes the session wholesale. Invoked on logout and on any 401
	// from the backend.
	Clear(ctx context.Context) error

	Preference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error

	Snapshot(ctx context.Context, family string) (FilterSnapshot, bool, error)
	SaveSnapshot(ctx context.Context, family string, snap FilterSnapshot) error
	// ClearSnapshots drops all filter snapshots, used when navigating away
	// from the report section entirely.
	ClearSnapshots(ctx context.Context) error

	Close() error
}
