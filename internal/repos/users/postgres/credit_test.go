package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgtestutil"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
)

func TestUsers_Credit(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	_, err := db.Exec(`INSERT INTO users (id, balance) VALUES (10, 100)`)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Credit(tx, 10, 40)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.GetBalance(ctx, 10)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got != 140 {
		t.Fatalf("balance mismatch: want 140, got %d", got)
	}
}

func TestUsers_Credit_MissingUser(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.Credit(tx, 424242, 40)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUsers_GetBalance_MissingUser(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.GetBalance(ctx, 424242)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
