package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/msto63/robolang/internal/validator"
	coregrpc "github.com/msto63/robolang/pkg/core/grpc"
	corelog "github.com/msto63/robolang/pkg/core/log"
	"github.com/msto63/robolang/pkg/lang/diag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startService(t *testing.T) *grpc.ClientConn {
	t.Helper()

	v, err := validator.New(validator.Options{Logger: corelog.Discard()})
	if err != nil {
		t.Fatalf("validator.New failed: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	cfg := coregrpc.DefaultServerConfig()
	cfg.EnableReflection = false
	srv := coregrpc.NewServer(cfg)
	Register(srv, NewService(v))

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := coregrpc.Dial(coregrpc.DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestValidateAccepted(t *testing.T) {
	client := NewClient(startService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.CheckHealth(ctx); err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}

	resp, err := client.Validate(ctx, "ok.robo", "function a() { move(); }\nfunction b() {}")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !resp.OK || resp.Diagnostic != nil {
		t.Fatalf("Expected acceptance, got %+v", resp)
	}
	if len(resp.Functions) != 2 || resp.Functions[0] != "a" || resp.Functions[1] != "b" {
		t.Errorf("Unexpected functions %v", resp.Functions)
	}
	if resp.Tokens != 16 {
		t.Errorf("Expected 16 tokens, got %d", resp.Tokens)
	}
}

func TestValidateRejected(t *testing.T) {
	client := NewClient(startService(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Validate(ctx, "bad.robo", "function main() {\n  repeat (x) {}\n}")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if resp.OK || resp.Diagnostic == nil {
		t.Fatalf("Expected rejection, got %+v", resp)
	}

	d := resp.Diagnostic
	want := diag.SpanRange(1, 10, 1)
	if d.Code != diag.CodeExpectedToken || d.Range != want || d.Expected != "number" || d.Severity != diag.SeverityError {
		t.Errorf("Unexpected diagnostic %+v", d)
	}
	if d.Message != "Expected number" {
		t.Errorf("Unexpected message %q", d.Message)
	}
}

func TestValidateRequiresText(t *testing.T) {
	conn := startService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []map[string]interface{}{
		{"name": "x"},
		{"name": "x", "text": 42},
	}
	for _, fields := range tests {
		req, _ := structpb.NewStruct(fields)
		err := conn.Invoke(ctx, validateMethod, req, new(structpb.Struct))
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("Expected InvalidArgument for %v, got %v", fields, err)
		}
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	empty, _ := structpb.NewStruct(map[string]interface{}{})
	if _, err := DecodeResponse(empty); err == nil {
		t.Error("Expected error for missing ok field")
	}

	noDiag, _ := structpb.NewStruct(map[string]interface{}{"ok": false})
	if _, err := DecodeResponse(noDiag); err == nil {
		t.Error("Expected error for rejection without diagnostic")
	}
}
