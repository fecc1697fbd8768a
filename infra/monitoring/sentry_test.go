package monitoring

import (
	"testing"

	"github.com/kilianp07/lift/config"
	coremon "github.com/kilianp07/lift/core/monitoring"
)

func TestNewSentryMonitor_NoDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{}, "lift")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor without dsn, got %T", m)
	}
}

func TestNewSentryMonitor_BadDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "::not a dsn"}, "lift"); err == nil {
		t.Fatalf("expected invalid dsn error")
	}
}

func TestNewSentryMonitor_Capture(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1", Environment: "test"}, "lift")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	m.CaptureException(nil, nil)
	m.CaptureException(errTest("boom"), map[string]string{"module": "test"})
	m.Flush(0)
}

type errTest string

func (e errTest) Error() string { return string(e) }
