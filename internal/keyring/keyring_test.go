package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://planner@localhost:5432/school?sslmode=disable"
	if err := SetConnectionString("", connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	got, err := GetConnectionString("")
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestProfilesAreSeparate(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("staging", "postgres://a@staging/db"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(""); err != ErrNotFound {
		t.Errorf("default profile should be empty, got %v", err)
	}
	got, err := GetConnectionString("staging")
	if err != nil || got != "postgres://a@staging/db" {
		t.Errorf("GetConnectionString(staging) = %q, %v", got, err)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("", "  "); err == nil {
		t.Error("SetConnectionString with blank value should return an error")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("", "postgres://planner@localhost/school"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(""); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(""); err != ErrNotFound {
		t.Errorf("after delete, GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(""); err != ErrNotFound {
		t.Errorf("second delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolve(t *testing.T) {
	gokeyring.MockInit()

	if got, err := Resolve("/tmp/komaplan.db"); err != nil || got != "/tmp/komaplan.db" {
		t.Errorf("paths should pass through, got %q, %v", got, err)
	}
	if !IsKeyringRef("keyring:prod") || IsKeyringRef("keyrings.db") {
		t.Errorf("IsKeyringRef misclassified")
	}

	if _, err := Resolve("keyring:prod"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := SetConnectionString("prod", "postgres://p@db/school"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if got, err := Resolve("keyring:prod"); err != nil || got != "postgres://p@db/school" {
		t.Errorf("Resolve(keyring:prod) = %q, %v", got, err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
