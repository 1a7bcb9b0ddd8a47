package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
)

func TestWithTransactionCommit(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	ctx := context.Background()

	err := instance.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, phone) VALUES (?, ?)`,
			"tx@example.test", "+2348000000001")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 committed row, got %d", n)
	}
}

func TestWithTransactionRollback(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := instance.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, phone) VALUES (?, ?)`,
			"rollback@example.test", "+2348000000002")
		if err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestWithTransactionDeadline(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	err := instance.WithTransaction(ctx, func(*sql.Tx) error { return nil })
	if !errors.Is(err, common.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestTranslateError(t *testing.T) {
	t.Parallel()
	tester := []struct {
		In       error
		Expected error
	}{
		{In: nil, Expected: nil},
		{In: sql.ErrNoRows, Expected: common.ErrNotFound},
		{In: errors.New("UNIQUE constraint failed: users.email"), Expected: common.ErrDuplicateKey},
		{In: errors.New("FOREIGN KEY constraint failed"), Expected: common.ErrNotFound},
		{In: errors.New("database is locked"), Expected: common.ErrConflict},
	}
	for x := range tester {
		got := database.TranslateError(tester[x].In)
		if tester[x].Expected == nil {
			if got != nil {
				t.Fatalf("test %d: expected nil got %v", x, got)
			}
			continue
		}
		if !errors.Is(got, tester[x].Expected) {
			t.Fatalf("test %d: expected %v got %v", x, tester[x].Expected, got)
		}
	}
}
