package auth

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/namekeeper/internal/core/db"
)

const testSecretID = "0123456789abcdef0123456789abcdef"

var testSecret = []byte("testsecret1234567890abcdefghijklmnop")

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	store, err := db.NewStore(conn)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

// issueKey creates and stores a key named name.
func issueKey(t *testing.T, store *db.Store, name string) (key, id string) {
	t.Helper()
	key, hash, err := GenerateAPIKey(testSecretID, testSecret)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	id, err = store.CreateAPIKey(name, hash)
	if err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	return key, id
}

func TestParseAPIKey(t *testing.T) {
	random := strings.Repeat("ab", 32)
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "nk-v1-" + testSecretID + "-" + random, false},
		{"wrong prefix", "tk-v1-" + testSecretID + "-" + random, true},
		{"wrong version", "nk-v2-" + testSecretID + "-" + random, true},
		{"short secret id", "nk-v1-0123-" + random, true},
		{"short random", "nk-v1-" + testSecretID + "-abcd", true},
		{"uppercase hex", "nk-v1-" + strings.ToUpper(testSecretID) + "-" + random, true},
		{"extra segment", "nk-v1-" + testSecretID + "-" + random + "-x", true},
		{"empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, data, err := ParseAPIKey(tc.key)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseAPIKey error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidKeyFormat) {
					t.Errorf("error = %v, want %v", err, ErrInvalidKeyFormat)
				}
				return
			}
			if id != testSecretID || data != random {
				t.Errorf("ParseAPIKey = (%s, %s)", id, data)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key1, hash1, err := GenerateAPIKey(testSecretID, testSecret)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	key2, _, err := GenerateAPIKey(testSecretID, testSecret)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if key1 == key2 {
		t.Error("two generated keys are equal")
	}
	if !VerifyHMAC(hash1, ComputeHMAC(testSecret, key1)) {
		t.Error("hash does not verify against the key")
	}
	if VerifyHMAC(hash1, ComputeHMAC(testSecret, key2)) {
		t.Error("hash verifies against a different key")
	}
	if _, _, err := GenerateAPIKey("not-hex", testSecret); err == nil {
		t.Error("GenerateAPIKey with invalid secret_id succeeded, want error")
	}
}

func TestAuthenticate(t *testing.T) {
	store := newTestStore(t)
	a := NewAuthenticator(map[string][]byte{testSecretID: testSecret}, store.Queries())
	ctx := context.Background()

	key, id := issueKey(t, store, "ci-runner")

	client, err := a.Authenticate(ctx, key)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if client != "ci-runner" {
		t.Errorf("client = %q, want ci-runner", client)
	}

	keys, err := store.ListAPIKeys()
	if err != nil {
		t.Fatal(err)
	}
	if !keys[0].LastUsedAt.Valid {
		t.Error("last_used_at not recorded")
	}

	otherSecret := "fedcba9876543210fedcba9876543210"
	unknown := FormatAPIKey(otherSecret, strings.Repeat("0", 64))
	if _, err := a.Authenticate(ctx, unknown); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown secret error = %v, want %v", err, ErrUnknownKey)
	}

	forged := FormatAPIKey(testSecretID, strings.Repeat("0", 64))
	if _, err := a.Authenticate(ctx, forged); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("forged key error = %v, want %v", err, ErrInvalidKey)
	}

	if err := store.RevokeAPIKey(id); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Authenticate(ctx, key); !errors.Is(err, ErrKeyRevoked) {
		t.Errorf("revoked key error = %v, want %v", err, ErrKeyRevoked)
	}
}

type failingQueries struct{}

func (failingQueries) Get(string, interface{}, ...interface{}) error {
	return errors.New("connection refused")
}

func (failingQueries) Exec(string, ...interface{}) (sql.Result, error) {
	return nil, errors.New("connection refused")
}

func TestUnaryInterceptor(t *testing.T) {
	store := newTestStore(t)
	a := NewAuthenticator(map[string][]byte{testSecretID: testSecret}, store.Queries())
	key, id := issueKey(t, store, "editor")
	revokedKey, revokedID := issueKey(t, store, "old")
	if err := store.RevokeAPIKey(revokedID); err != nil {
		t.Fatal(err)
	}

	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = ClientFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/namekeeper.v1.NamingPolicy/CheckNames"}

	call := func(a *Authenticator, md metadata.MD) error {
		ctx := context.Background()
		if md != nil {
			ctx = metadata.NewIncomingContext(ctx, md)
		}
		_, err := a.UnaryInterceptor()(ctx, nil, info, handler)
		return err
	}

	if err := call(a, metadata.Pairs("x-api-key", key)); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if seen != "editor" {
		t.Errorf("ClientFromContext = %q, want editor (key %s)", seen, id)
	}

	tests := []struct {
		name string
		a    *Authenticator
		md   metadata.MD
		want codes.Code
	}{
		{"no metadata", a, nil, codes.Unauthenticated},
		{"no key", a, metadata.Pairs("other", "x"), codes.Unauthenticated},
		{"malformed key", a, metadata.Pairs("x-api-key", "nope"), codes.Unauthenticated},
		{"revoked key", a, metadata.Pairs("x-api-key", revokedKey), codes.PermissionDenied},
		{"database down", NewAuthenticator(map[string][]byte{testSecretID: testSecret}, failingQueries{}), metadata.Pairs("x-api-key", key), codes.Unavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := call(tc.a, tc.md)
			if got := status.Code(err); got != tc.want {
				t.Errorf("code = %v, want %v (err %v)", got, tc.want, err)
			}
		})
	}

	healthInfo := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	if _, err := a.UnaryInterceptor()(context.Background(), nil, healthInfo, handler); err != nil {
		t.Errorf("health check required a key: %v", err)
	}
}

func TestLastUsedThrottle(t *testing.T) {
	store := newTestStore(t)
	a := NewAuthenticator(map[string][]byte{testSecretID: testSecret}, store.Queries())
	key, _ := issueKey(t, store, "throttled")

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return first }
	if _, err := a.Authenticate(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	a.now = func() time.Time { return first.Add(30 * time.Second) }
	if _, err := a.Authenticate(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	keys, err := store.ListAPIKeys()
	if err != nil {
		t.Fatal(err)
	}
	if got := keys[0].LastUsedAt.Time; !got.Equal(first) {
		t.Errorf("last_used_at = %v, want %v", got, first)
	}
}

func TestClientFromContext(t *testing.T) {
	if got := ClientFromContext(context.Background()); got != "" {
		t.Errorf("ClientFromContext(empty) = %q, want empty", got)
	}
	if got := ClientFromContext(WithClient(context.Background(), "cli")); got != "cli" {
		t.Errorf("ClientFromContext = %q, want cli", got)
	}
}
