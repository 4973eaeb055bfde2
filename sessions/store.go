// Package sessions keeps server-side login sessions. The cookie carries a
// random token; stores only ever see its SHA-256.
package sessions

import (
	"context"
	"errors"

	"github.com/yeremiapane/duty-roster/models"
)

var ErrNotFound = errors.New("session not found or expired")

type Store interface {
	// Create issues a new token for user and returns it with the stored record.
	Create(ctx context.Context, user models.User) (string, *models.Session, error)
	// Resolve returns the live session for token and slides its expiry.
	Resolve(ctx context.Context, token string) (*models.Session, error)
	// ResolveID is Resolve keyed by the stored session id.
	ResolveID(ctx context.Context, id string) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
	// DestroyUser drops every session belonging to userID.
	DestroyUser(ctx context.Context, userID string) error
}
