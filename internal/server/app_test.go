package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/credauth/internal/server/audit"
	"github.com/dmitrijs2005/credauth/internal/server/config"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.authService == nil {
		t.Fatal("auth service not wired")
	}
	if app.db != nil {
		t.Fatal("memory store must not open a database")
	}
}

func TestNewApp_PostgresUnreachable(t *testing.T) {
	c := testConfig()
	c.StoreKind = config.StorePostgres
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	if _, err := NewApp(context.Background(), c); err == nil {
		t.Fatal("expected error for unreachable database")
	}
}

func TestNewAuditSink(t *testing.T) {
	c := testConfig()

	s, err := newAuditSink(context.Background(), c)
	if err != nil {
		t.Fatalf("newAuditSink: %v", err)
	}
	if _, ok := s.(audit.NopSink); !ok {
		t.Fatalf("expected NopSink without bucket, got %T", s)
	}

	c.S3Bucket = "audit"
	s, err = newAuditSink(context.Background(), c)
	if err != nil {
		t.Fatalf("newAuditSink: %v", err)
	}
	if _, ok := s.(*audit.S3Sink); !ok {
		t.Fatalf("expected *S3Sink with bucket, got %T", s)
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
