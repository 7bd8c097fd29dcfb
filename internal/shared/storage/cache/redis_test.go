package cache

import (
	"context"
	"testing"
	"time"
)

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "http://not-redis", DefaultOptions()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConnectFailsOnUnreachableServer(t *testing.T) {
	opts := DefaultOptions()
	opts.DialTimeout = 50 * time.Millisecond
	opts.PingTimeout = 200 * time.Millisecond
	if _, err := Connect(context.Background(), "redis://127.0.0.1:1/0", opts); err == nil {
		t.Fatalf("expected ping error")
	}
}
