package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/unipress/portal/apps/portal/echo"
	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
	inmemstore "github.com/unipress/portal/storage/sessionstore/inmem"
	"github.com/unipress/portal/upstream"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func TestMain(m *testing.M) {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	os.Exit(m.Run())
}

// nopLogger swallows everything; gateway tests assert on responses, not logs.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeUpstream stands in for the remote academic API. It mints real (HS256)
// bearer tokens so the gateway's expiry handling sees production-shaped input.
type fakeUpstream struct {
	srv *httptest.Server

	mu        sync.Mutex
	accounts  map[string]fakeAccount
	tokens    map[string]session.Identity
	rejectAll bool // force 401 on every authenticated endpoint
}

type fakeAccount struct {
	password string
	user     session.Identity
	tokenTTL time.Duration // may be negative to issue an already-expired token
}

func newFakeUpstream() *fakeUpstream {
	up := &fakeUpstream{
		accounts: make(map[string]fakeAccount),
		tokens:   make(map[string]session.Identity),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", up.handleLogin)
	mux.HandleFunc("/api/auth/me", up.handleMe)
	mux.HandleFunc("/api/faculties", up.handleFaculties)
	mux.HandleFunc("/api/topics/faculty/", up.handleEmptyList)
	mux.HandleFunc("/api/public-contributions", up.handleEmptyList)
	up.srv = httptest.NewServer(mux)
	return up
}

func (up *fakeUpstream) close() { up.srv.Close() }

func (up *fakeUpstream) addAccount(username, password string, user session.Identity, tokenTTL time.Duration) {
	up.mu.Lock()
	defer up.mu.Unlock()
	up.accounts[username] = fakeAccount{password: password, user: user, tokenTTL: tokenTTL}
}

func (up *fakeUpstream) setRejectAll(reject bool) {
	up.mu.Lock()
	defer up.mu.Unlock()
	up.rejectAll = reject
}

func (up *fakeUpstream) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds upstream.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	up.mu.Lock()
	defer up.mu.Unlock()
	acc, ok := up.accounts[creds.Username]
	if !ok || acc.password != creds.Password {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Wrong username or password"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   acc.user.ID,
		ExpiresAt: time.Now().Add(acc.tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte("upstream-secret"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	up.tokens[signed] = acc.user

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(upstream.LoginResult{Token: signed, User: acc.user})
}

func (up *fakeUpstream) authenticate(r *http.Request) (session.Identity, bool) {
	up.mu.Lock()
	defer up.mu.Unlock()
	if up.rejectAll {
		return session.Identity{}, false
	}
	auth := r.Header.Get("Authorization")
	if len(auth) < 8 || auth[:7] != "Bearer " {
		return session.Identity{}, false
	}
	user, ok := up.tokens[auth[7:]]
	return user, ok
}

func (up *fakeUpstream) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := up.authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

func (up *fakeUpstream) handleFaculties(w http.ResponseWriter, r *http.Request) {
	if _, ok := up.authenticate(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode([]upstream.Faculty{{ID: "64f0000000000000000000f1", FacultyName: "Business"}})
}

func (up *fakeUpstream) handleEmptyList(w http.ResponseWriter, r *http.Request) {
	if _, ok := up.authenticate(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("[]"))
}

// testApp bundles a gateway wired against a fake upstream with its backing
// session store exposed for assertions.
type testApp struct {
	app   echoapi.Server
	conf  *core.Config
	store *inmemstore.Store
}

func newTestApp(up *fakeUpstream) *testApp {
	store := inmemstore.New()
	return newTestAppWithStore(up, store)
}

func newTestAppWithStore(up *fakeUpstream, store *inmemstore.Store) *testApp {
	conf := &core.Config{
		AppName:   "Unipress Portal",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "h2(h!x)#*c2(#yg4h^$cegm2emypoq5-wer)enb$+57=dz&uox",
		Upstream: core.UpstreamConfig{
			BaseURL: up.srv.URL,
			Timeout: 5 * time.Second,
		},
		Session: core.SessionConfig{
			CookieName:  "portal_session",
			Engine:      "inmem",
			MaxTimerArm: time.Hour,
		},
	}

	sessions := session.NewRegistry(store, session.TimerScheduler{}, conf.Session.MaxTimerArm)
	app := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     nopLogger{},
		Upstream:   upstream.NewClient(conf),
		Sessions:   sessions,
		Validate:   validate,
		Translator: translator,
	})
	return &testApp{app: app, conf: conf, store: store}
}

func (ta *testApp) request(method, path string, body []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		buf.Write(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func (ta *testApp) sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == ta.conf.Session.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// login authenticates against the fake upstream and returns the sealed session
// cookie plus the decoded response.
func (ta *testApp) login(t *testing.T, username, password string) (*http.Cookie, echoapi.LoginResponse) {
	t.Helper()
	body, err := json.Marshal(echoapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		t.Fatalf("login(): %v", err)
	}
	rec := ta.request(http.MethodPost, "/login", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login(): code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var res echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("login(): decoding response: %v", err)
	}
	return ta.sessionCookie(t, rec), res
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}
