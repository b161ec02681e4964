package session

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
)

// fakes

type fakeTask struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

func (t *fakeTask) Cancel() bool {
	if t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) Task {
	t := &fakeTask{d: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *fakeScheduler) pending() []*fakeTask {
	var live []*fakeTask
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	return live
}

type fakeStore struct {
	records map[string]Record
	saves   int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]Record)}
}

func (s *fakeStore) Save(_ context.Context, rec Record) error {
	s.saves++
	s.records[rec.SID] = rec
	return nil
}

func (s *fakeStore) Get(_ context.Context, sid string) (Record, error) {
	rec, ok := s.records[sid]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *fakeStore) Delete(_ context.Context, sid string) error {
	s.deletes++
	delete(s.records, sid)
	return nil
}

// helpers

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: exp.Unix()})
	ss, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("makeToken() failed: %v", err)
	}
	return ss
}

func setClock(t *testing.T, now time.Time) func(time.Time) {
	t.Helper()
	current := now
	NowFunc = func() time.Time { return current }
	t.Cleanup(func() { NowFunc = time.Now })
	return func(to time.Time) { current = to }
}

var testIdentity = Identity{
	ID:       "64f0000000000000000000aa",
	Username: "jdoe",
	Email:    "jdoe@test.edu",
	RoleID:   RoleStudent,
}

func TestLoginInstallsSession(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	token := makeToken(t, now.Add(time.Hour))
	err := m.Login(context.Background(), testIdentity, token)
	assert.NoError(t, err)

	identity, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, testIdentity, identity)
	assert.Equal(t, token, m.Credential())

	rec, err := store.Get(context.Background(), "sid-1")
	assert.NoError(t, err)
	assert.Equal(t, testIdentity, rec.Identity)
	assert.Len(t, sched.pending(), 1)
}

func TestLoginRejectsExpiredCredential(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	err := m.Login(context.Background(), testIdentity, makeToken(t, now.Add(-time.Second)))
	assert.ErrorIs(t, err, ErrCredentialExpired)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Zero(t, store.saves)
	assert.Empty(t, sched.pending())
}

func TestLoginRejectsMalformedCredential(t *testing.T) {
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	err := m.Login(context.Background(), testIdentity, "not-a-jwt")
	assert.ErrorIs(t, err, ErrCredentialInvalid)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Zero(t, store.saves)
	assert.Empty(t, sched.pending())
}

func TestLoginRejectsMissingExpiry(t *testing.T) {
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	// a decodable token without an exp claim must not be installed either
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: "jdoe"})
	ss, err := token.SignedString([]byte("secret"))
	assert.NoError(t, err)

	assert.ErrorIs(t, m.Login(context.Background(), testIdentity, ss), ErrCredentialInvalid)
	assert.Zero(t, store.saves)
}

func TestSingleTimerInvariant(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	ctx := context.Background()
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(time.Hour))))
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(2*time.Hour))))
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(3*time.Hour))))

	// only the most recent login's timer survives
	live := sched.pending()
	assert.Len(t, live, 1)
	assert.Equal(t, 3*time.Hour, live[0].d)
}

func TestLogout(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	ctx := context.Background()
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(time.Hour))))
	assert.NoError(t, m.Logout(ctx))

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Credential())
	assert.Empty(t, store.records)
	assert.Empty(t, sched.pending())
}

func TestLogoutIdempotent(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	ctx := context.Background()

	// from anonymous
	assert.NoError(t, m.Logout(ctx))

	// twice in a row
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(time.Hour))))
	assert.NoError(t, m.Logout(ctx))
	assert.NoError(t, m.Logout(ctx))

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, store.records)
}

func TestRestoreEmptyStore(t *testing.T) {
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	assert.NoError(t, m.Restore(context.Background()))

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Zero(t, store.saves)
	assert.Zero(t, store.deletes)
	assert.Empty(t, sched.pending())
}

func TestRestoreValidRecord(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}

	token := makeToken(t, now.Add(time.Hour))
	store.records["sid-1"] = Record{SID: "sid-1", Identity: testIdentity, Credential: token, ExpiresAt: now.Add(time.Hour)}

	m := NewManager("sid-1", store, sched, 0)
	assert.NoError(t, m.Restore(context.Background()))

	identity, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, testIdentity, identity)
	assert.Equal(t, token, m.Credential())

	// installed without re-persisting, timer armed as on login
	assert.Zero(t, store.saves)
	assert.Len(t, sched.pending(), 1)
}

func TestRestoreClearsStaleRecord(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}

	token := makeToken(t, now.Add(-time.Minute))
	store.records["sid-1"] = Record{SID: "sid-1", Identity: testIdentity, Credential: token, ExpiresAt: now.Add(-time.Minute)}

	m := NewManager("sid-1", store, sched, 0)
	assert.NoError(t, m.Restore(context.Background()))

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, store.records)
	assert.Empty(t, sched.pending())
}

func TestRestoreReadsStoreOnce(t *testing.T) {
	now := time.Now()
	setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	assert.NoError(t, m.Restore(context.Background()))

	// a record appearing later must not be picked up by a second restore
	token := makeToken(t, now.Add(time.Hour))
	store.records["sid-1"] = Record{SID: "sid-1", Identity: testIdentity, Credential: token, ExpiresAt: now.Add(time.Hour)}
	assert.NoError(t, m.Restore(context.Background()))

	_, ok := m.Current()
	assert.False(t, ok)
}

func TestAutoLogoutOnExpiry(t *testing.T) {
	now := time.Now()
	advance := setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}

	token := makeToken(t, now.Add(10*time.Second))
	store.records["sid-1"] = Record{SID: "sid-1", Identity: testIdentity, Credential: token, ExpiresAt: now.Add(10 * time.Second)}

	m := NewManager("sid-1", store, sched, 0)
	assert.NoError(t, m.Restore(context.Background()))

	_, ok := m.Current()
	assert.True(t, ok)

	// 10s elapse with no other calls: the session dies on its own and the
	// record is gone
	advance(now.Add(11 * time.Second))
	live := sched.pending()
	assert.Len(t, live, 1)
	live[0].fn()

	_, ok = m.Current()
	assert.False(t, ok)
	assert.Empty(t, store.records)
}

func TestBoundedTimerRearming(t *testing.T) {
	now := time.Now()
	advance := setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 24*time.Hour)

	// a week-long credential is armed in 24h chunks
	assert.NoError(t, m.Login(context.Background(), testIdentity, makeToken(t, now.Add(7*24*time.Hour))))

	live := sched.pending()
	assert.Len(t, live, 1)
	assert.Equal(t, 24*time.Hour, live[0].d)

	// an intermediate fire re-arms instead of logging out
	advance(now.Add(24 * time.Hour))
	live[0].fn()

	_, ok := m.Current()
	assert.True(t, ok)
	live = sched.pending()
	assert.Len(t, live, 1)

	// past the real expiry the session dies
	advance(now.Add(8 * 24 * time.Hour))
	live[0].fn()
	_, ok = m.Current()
	assert.False(t, ok)
	assert.Empty(t, store.records)
}

func TestOnLogoutHook(t *testing.T) {
	now := time.Now()
	advance := setClock(t, now)
	store, sched := newFakeStore(), &fakeScheduler{}
	m := NewManager("sid-1", store, sched, 0)

	var calls int
	m.OnLogout(func() { calls++ })

	ctx := context.Background()
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(time.Hour))))
	assert.NoError(t, m.Logout(ctx))
	assert.Equal(t, 1, calls)

	// timer-driven logout fires the hook too
	assert.NoError(t, m.Login(ctx, testIdentity, makeToken(t, now.Add(time.Hour))))
	advance(now.Add(2 * time.Hour))
	sched.pending()[0].fn()
	assert.Equal(t, 2, calls)
}
