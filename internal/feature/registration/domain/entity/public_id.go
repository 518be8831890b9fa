package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"registration_backend/internal/feature/registration/domain"
)

// UserPublicIDPrefix is prepended to every user public identifier.
const UserPublicIDPrefix = "usr"

// PublicID is the externally visible identifier of a user, rendered as "usr_<uuidv7>".
// Storage keeps only the UUID part; the prefix is added back on the way out.
type PublicID struct {
	id uuid.UUID
}

// NewPublicID generates a fresh time-ordered public identifier.
func NewPublicID() (PublicID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return PublicID{}, fmt.Errorf("generate public id: %w", err)
	}
	return PublicID{id: id}, nil
}

// PublicIDFromUUID wraps a stored UUID.
func PublicIDFromUUID(id uuid.UUID) PublicID {
	return PublicID{id: id}
}

// ParsePublicID parses the "usr_<uuid>" form.
func ParsePublicID(s string) (PublicID, error) {
	prefix, raw, ok := strings.Cut(strings.TrimSpace(s), "_")
	if !ok || prefix != UserPublicIDPrefix {
		return PublicID{}, fmt.Errorf("%w: %q", domain.ErrInvalidPublicID, s)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return PublicID{}, fmt.Errorf("%w: %q", domain.ErrInvalidPublicID, s)
	}
	return PublicID{id: id}, nil
}

// UUID returns the UUID part, which is what storage persists.
func (p PublicID) UUID() uuid.UUID {
	return p.id
}

// IsZero reports whether the identifier was never assigned.
func (p PublicID) IsZero() bool {
	return p.id == uuid.Nil
}

func (p PublicID) String() string {
	return UserPublicIDPrefix + "_" + p.id.String()
}
