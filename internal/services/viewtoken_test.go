package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestViewTokenRoundTrip(t *testing.T) {
	log := testLogger(t)
	svc, err := NewViewTokenService(log, "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewViewTokenService: %v", err)
	}
	assignmentID := uuid.New()

	token, err := svc.Issue(assignmentID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != assignmentID {
		t.Fatalf("validated assignment = %s, want %s", got, assignmentID)
	}
}

func TestViewTokenWrongSecret(t *testing.T) {
	log := testLogger(t)
	issuer, _ := NewViewTokenService(log, "secret-a", time.Minute)
	verifier, _ := NewViewTokenService(log, "secret-b", time.Minute)

	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Fatalf("a token signed with another secret must not validate")
	}
}

func TestViewTokenRequiresSecret(t *testing.T) {
	if _, err := NewViewTokenService(testLogger(t), "", time.Minute); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
}

func TestViewTokenGarbage(t *testing.T) {
	svc, _ := NewViewTokenService(testLogger(t), "test-secret", time.Minute)
	if _, err := svc.Validate("not-a-jwt"); err == nil {
		t.Fatalf("garbage token must not validate")
	}
}
