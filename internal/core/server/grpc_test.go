package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/namekeeper/internal/core/api"
	"github.com/solatis/namekeeper/internal/core/auth"
	"github.com/solatis/namekeeper/internal/core/config"
	"github.com/solatis/namekeeper/internal/core/db"
	"github.com/solatis/namekeeper/internal/core/metrics"
	"github.com/solatis/namekeeper/internal/types"
)

const testSecretID = "0123456789abcdef0123456789abcdef"

var testSecret = []byte("testsecret1234567890abcdefghijklmnop")

// startServer serves a fully wired policy API over bufconn and returns a
// client connection plus a valid API key.
func startServer(t *testing.T) (*grpc.ClientConn, string) {
	t.Helper()

	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := db.MigrateUp(conn); err != nil {
		t.Fatal(err)
	}
	store, err := db.NewStore(conn)
	if err != nil {
		t.Fatal(err)
	}

	key, hash, err := auth.GenerateAPIKey(testSecretID, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateAPIKey("editor", hash); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultPolicyAPIConfig()
	cfg.MetricsPort = 0
	service, err := api.NewService(cfg, []types.RuleConfig{
		{Selectors: []string{"default"}, Format: []string{"camelCase"}},
	}, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	authenticator := auth.NewAuthenticator(map[string][]byte{testSecretID: testSecret}, store.Queries())

	srv, err := NewGRPCServer(cfg, service, authenticator, nil)
	if err != nil {
		t.Fatalf("NewGRPCServer failed: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(context.Background(), lis)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cc.Close() })
	return cc, key
}

func TestNewGRPCServer_NilArgs(t *testing.T) {
	cfg := config.DefaultPolicyAPIConfig()
	service, err := api.NewService(cfg, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	authenticator := auth.NewAuthenticator(nil, nil)

	if _, err := NewGRPCServer(nil, service, authenticator, nil); err == nil {
		t.Error("nil cfg accepted")
	}
	if _, err := NewGRPCServer(cfg, nil, authenticator, nil); err == nil {
		t.Error("nil service accepted")
	}
	if _, err := NewGRPCServer(cfg, service, nil, nil); err == nil {
		t.Error("nil authenticator accepted")
	}
}

func TestServer_Authentication(t *testing.T) {
	cc, key := startServer(t)
	client := api.NewNamingPolicyClient(cc)

	req, err := structpb.NewStruct(map[string]interface{}{
		"names": []interface{}{map[string]interface{}{"name": "Bad", "category": "variable"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	before := testutil.ToFloat64(metrics.Requests.WithLabelValues(api.CheckNamesMethod, codes.Unauthenticated.String()))
	if _, err := client.CheckNames(ctx, req); status.Code(err) != codes.Unauthenticated {
		t.Errorf("unauthenticated call code = %v, want %v", status.Code(err), codes.Unauthenticated)
	}
	after := testutil.ToFloat64(metrics.Requests.WithLabelValues(api.CheckNamesMethod, codes.Unauthenticated.String()))
	if after != before+1 {
		t.Errorf("unauthenticated requests metric = %v, want %v", after, before+1)
	}

	authed := metadata.AppendToOutgoingContext(ctx, "x-api-key", key)
	resp, err := client.CheckNames(authed, req)
	if err != nil {
		t.Fatalf("CheckNames failed: %v", err)
	}
	if n := len(resp.Fields["violations"].GetListValue().GetValues()); n != 1 {
		t.Errorf("violations = %d, want 1", n)
	}
}

func TestServer_Health(t *testing.T) {
	cc, _ := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, service := range []string{"", api.ServiceName} {
		resp, err := grpc_health_v1.NewHealthClient(cc).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Health.Check(%q) failed: %v", service, err)
		}
		if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Health.Check(%q) = %v, want SERVING", service, resp.Status)
		}
	}
}
