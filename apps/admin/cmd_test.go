package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
	inmemstore "github.com/unipress/portal/storage/sessionstore/inmem"
	"github.com/unipress/portal/upstream"
)

func setup(upstreamURL string) (*commandLine, *inmemstore.Store) {
	store := inmemstore.New()
	conf := &core.Config{
		Upstream: core.UpstreamConfig{BaseURL: upstreamURL, Timeout: time.Second},
	}
	cli := &commandLine{
		store:    store,
		upstream: upstream.NewClient(conf),
	}
	return cli, store
}

func seedRecord(t *testing.T, store *inmemstore.Store, sid string, exp time.Time) {
	t.Helper()
	rec := session.Record{
		SID:        sid,
		Identity:   session.Identity{ID: "64f0000000000000000000aa", Username: "jdoe", RoleID: session.RoleStudent},
		Credential: "tok-" + sid,
		ExpiresAt:  exp,
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("seedRecord(): %v", err)
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // fed to the password prompt
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup("http://localhost:0")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "revoke: no sid", args: []string{"revoke"}, wantErr: errHelp},
		{name: "probe: no username", args: []string{"probe"}, wantErr: errHelp},
		{name: "probe: empty password", args: []string{"probe", "-username", "jdoe"}, wantErr: errHelp},
		{name: "purge", args: []string{"purge"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_purge(t *testing.T) {
	cli, store := setup("http://localhost:0")

	now := time.Now()
	seedRecord(t, store, "live", now.Add(time.Hour))
	seedRecord(t, store, "dead-1", now.Add(-time.Minute))
	seedRecord(t, store, "dead-2", now.Add(-time.Hour))

	if err := cli.run([]string{"admin", "purge"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d; want 1", store.Len())
	}
	if _, err := store.Get(context.Background(), "live"); err != nil {
		t.Errorf("live record was purged: %v", err)
	}
}

func Test_commandLine_revoke(t *testing.T) {
	cli, store := setup("http://localhost:0")

	seedRecord(t, store, "sid-1", time.Now().Add(time.Hour))
	seedRecord(t, store, "sid-2", time.Now().Add(time.Hour))

	if err := cli.run([]string{"admin", "revoke", "-sid", "sid-1"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if _, err := store.Get(context.Background(), "sid-1"); err != session.ErrRecordNotFound {
		t.Errorf("revoked record still present; err = %v", err)
	}
	if _, err := store.Get(context.Background(), "sid-2"); err != nil {
		t.Errorf("unrelated record was revoked: %v", err)
	}
}

func Test_commandLine_probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var creds upstream.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "jdoe" || creds.Password != "s3cr3t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("upstream-secret"))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(upstream.LoginResult{
			Token: signed,
			User:  session.Identity{ID: "64f0000000000000000000aa", Username: "jdoe", RoleID: session.RoleStudent},
		})
	}))
	defer srv.Close()

	cli, _ := setup(srv.URL)

	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte("s3cr3t"), nil
	}
	if err := cli.run([]string{"admin", "probe", "-username", "jdoe"}); err != nil {
		t.Errorf("cli.run() unexpected error = %v", err)
	}

	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte("wrong"), nil
	}
	if err := cli.run([]string{"admin", "probe", "-username", "jdoe"}); err == nil {
		t.Error("cli.run() expected an error for wrong credentials")
	}
}
