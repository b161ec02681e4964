package session

import (
	"context"
	"errors"
	"time"
)

// RoleID identifies one of the five fixed access classes. Values are the
// upstream API's opaque role object ids and never change.
type RoleID string

const (
	RoleAdmin   RoleID = "64f000000000000000000011"
	RoleUMM     RoleID = "64f000000000000000000012" // unit/faculty manager
	RoleFMC     RoleID = "64f000000000000000000013" // faculty moderator/coordinator
	RoleStudent RoleID = "64f000000000000000000014"
	RoleGuest   RoleID = "64f000000000000000000015"
)

var AllRoles = []RoleID{RoleAdmin, RoleUMM, RoleFMC, RoleStudent, RoleGuest}

// Identity is the authenticated principal as returned by the upstream API.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	RoleID    RoleID `json:"roleID"`
	FacultyID string `json:"facultyID,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Record is the persisted session state: the serialized Identity plus the raw
// bearer credential, keyed by the opaque browser session id. It survives
// gateway restarts for as long as the browser keeps its session cookie.
type Record struct {
	SID        string    `json:"sid"`
	Identity   Identity  `json:"identity"`
	Credential string    `json:"credential"`
	ExpiresAt  time.Time `json:"expires_at"`
}

var (
	ErrRecordNotFound = errors.New("session record not found")

	ErrCredentialExpired = errors.New("credential already expired")
	ErrCredentialInvalid = errors.New("credential cannot be decoded")
)

// Store persists session Records. Only the Manager writes to it; every other
// component treats session state as read-only.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, sid string) (Record, error)
	Delete(ctx context.Context, sid string) error
}

// Purger is implemented by stores that can drop all expired records in bulk.
// Stores with native TTL support (redis) do not need it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}
