package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var NowFunc = time.Now // mockable

// Manager is the single source of truth for "who is logged in and until when"
// within one browser session. It owns the in-memory Identity/Credential pair,
// mirrors every mutation to the persisted Record and keeps at most one expiry
// task pending at any time.
type Manager struct {
	sid    string
	store  Store
	sched  Scheduler
	maxArm time.Duration

	mu         sync.Mutex
	identity   *Identity
	credential string
	expiresAt  time.Time
	task       Task
	restored   bool
	onLogout   func()
}

func NewManager(sid string, store Store, sched Scheduler, maxArm time.Duration) *Manager {
	return &Manager{
		sid:    sid,
		store:  store,
		sched:  sched,
		maxArm: maxArm,
	}
}

func (m *Manager) SID() string { return m.sid }

// OnLogout registers a callback invoked after every transition to the
// anonymous state, whether explicit, restored-stale or timer-driven.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = fn
}

// Login installs the identity/credential pair as the active session.
// The credential must decode and carry an `exp` strictly in the future;
// otherwise nothing is installed, persisted or scheduled.
func (m *Manager) Login(ctx context.Context, identity Identity, credential string) error {
	exp, err := CredentialExpiry(credential)
	if err != nil {
		return err
	}
	if !exp.After(NowFunc()) {
		return ErrCredentialExpired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{SID: m.sid, Identity: identity, Credential: credential, ExpiresAt: exp}
	if err := m.store.Save(ctx, rec); err != nil {
		return errors.Wrap(err, "persisting session record")
	}
	m.restored = true // a fresh login supersedes any restorable state
	m.installLocked(identity, credential, exp)
	return nil
}

// Logout unconditionally clears the session. It is idempotent: logging out of
// an anonymous session leaves the same end state and is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.task != nil {
		m.task.Cancel()
		m.task = nil
	}
	m.identity = nil
	m.credential = ""
	m.expiresAt = time.Time{}
	hook := m.onLogout
	m.mu.Unlock()

	if err := m.store.Delete(ctx, m.sid); err != nil && !errors.Is(err, ErrRecordNotFound) {
		return errors.Wrap(err, "deleting session record")
	}
	if hook != nil {
		hook()
	}
	return nil
}

// Restore reads the persisted Record once per Manager lifetime and, if it
// holds a still-valid credential, reinstalls it without re-persisting. A stale
// or undecodable record is actively deleted, exactly as a logout would.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true
	m.mu.Unlock()

	rec, err := m.store.Get(ctx, m.sid)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading session record")
	}

	exp, expErr := CredentialExpiry(rec.Credential)
	if expErr != nil || !exp.After(NowFunc()) {
		if err := m.store.Delete(ctx, m.sid); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return errors.Wrap(err, "deleting stale session record")
		}
		return nil
	}

	m.mu.Lock()
	m.installLocked(rec.Identity, rec.Credential, exp)
	m.mu.Unlock()
	return nil
}

// Current returns the active Identity, if any.
func (m *Manager) Current() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

// Credential returns the active bearer credential, or "" when anonymous.
func (m *Manager) Credential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credential
}

// ExpiresAt returns the active credential's expiry, zero when anonymous.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

func (m *Manager) installLocked(identity Identity, credential string, exp time.Time) {
	m.identity = &identity
	m.credential = credential
	m.expiresAt = exp
	m.armLocked()
}

// armLocked (re)schedules the expiry task. Any previously pending task is
// cancelled first so at most one is ever live. A single arm is capped at
// maxArm: long-lived credentials get re-armed in chunks instead of one
// unbounded timer.
func (m *Manager) armLocked() {
	if m.task != nil {
		m.task.Cancel()
	}
	d := m.expiresAt.Sub(NowFunc())
	if m.maxArm > 0 && d > m.maxArm {
		d = m.maxArm
	}
	m.task = m.sched.Schedule(d, m.expire)
}

// expire runs when the expiry task fires: either the credential is genuinely
// past its exp and the session is torn down, or this was an intermediate
// chunk and the task is re-armed.
func (m *Manager) expire() {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return
	}
	if NowFunc().Before(m.expiresAt) {
		m.armLocked()
		m.mu.Unlock()
		return
	}
	m.task = nil
	m.identity = nil
	m.credential = ""
	m.expiresAt = time.Time{}
	hook := m.onLogout
	m.mu.Unlock()

	// The record must be deleted here as well; leaving it behind would only
	// get it re-read and discarded on the next restore.
	_ = m.store.Delete(context.Background(), m.sid)
	if hook != nil {
		hook()
	}
}
