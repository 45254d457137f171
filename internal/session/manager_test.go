package session

import (
	"errors"
	"testing"
	"time"
)

func TestBeginAndResolve(t *testing.T) {
	m := NewManager(time.Minute)

	token := m.Begin("0170000001")
	if token == "" {
		t.Fatalf("expected a token")
	}

	phone, err := m.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if phone != "0170000001" {
		t.Fatalf("expected phone 0170000001, got %s", phone)
	}

	if _, err := m.Resolve("bogus"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for unknown token, got %v", err)
	}
}

func TestNewLoginReplacesPreviousSession(t *testing.T) {
	m := NewManager(time.Minute)

	first := m.Begin("0170000001")
	second := m.Begin("0170000002")

	if _, err := m.Resolve(first); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected first session revoked, got %v", err)
	}
	phone, err := m.Resolve(second)
	if err != nil || phone != "0170000002" {
		t.Fatalf("second session broken: phone=%s err=%v", phone, err)
	}
}

func TestEndAndRevoke(t *testing.T) {
	m := NewManager(time.Minute)

	token := m.Begin("0170000001")
	m.End("not-the-token") // no-op
	if _, err := m.Resolve(token); err != nil {
		t.Fatalf("session ended by wrong token: %v", err)
	}

	m.End(token)
	if _, err := m.Resolve(token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after end, got %v", err)
	}

	token = m.Begin("0170000001")
	m.Revoke()
	if _, err := m.Resolve(token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after revoke, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewManager(time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	token := m.Begin("0170000001")

	// Activity inside the TTL slides the window.
	now = now.Add(50 * time.Second)
	if _, err := m.Resolve(token); err != nil {
		t.Fatalf("resolve inside ttl: %v", err)
	}
	now = now.Add(50 * time.Second)
	if _, err := m.Resolve(token); err != nil {
		t.Fatalf("resolve after slide: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Resolve(token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected expiry, got %v", err)
	}
}
