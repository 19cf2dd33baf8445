package main

import (
	"testing"
	"time"
)

func TestSessionValueRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	auth := &authService{sessionSecret: []byte("secret"), now: func() time.Time { return now }}

	value := auth.createSessionValue("admin@tenderhub.local")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "admin@tenderhub.local" {
		t.Fatalf("expected valid session for admin, got %q ok=%v", email, ok)
	}

	other := &authService{sessionSecret: []byte("other"), now: auth.now}
	if _, ok := other.verifySessionValue(value); ok {
		t.Fatalf("session signed with another secret must be rejected")
	}

	tampered := "x" + value
	if _, ok := auth.verifySessionValue(tampered); ok {
		t.Fatalf("tampered session must be rejected")
	}

	for _, bad := range []string{"", "nodot", "abc.zz"} {
		if _, ok := auth.verifySessionValue(bad); ok {
			t.Fatalf("malformed session %q must be rejected", bad)
		}
	}

	now = now.Add(sessionTTL + time.Second)
	if _, ok := auth.verifySessionValue(value); ok {
		t.Fatalf("expired session must be rejected")
	}
}
