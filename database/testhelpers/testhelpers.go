// Package testhelpers spins up throwaway SQLite databases for repository and
// service tests.
package testhelpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	// sqlite3 driver for test databases
	_ "github.com/mattn/go-sqlite3"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/database/repository/user"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// NewTestDatabase returns a connected instance backed by a temp-dir SQLite
// file with the schema applied. The database is torn down with the test.
func NewTestDatabase(t *testing.T) *database.Instance {
	t.Helper()
	repository.SetSQLDialect(database.DBSQLite3)

	dsn := "file:" + filepath.Join(t.TempDir(), "rhinox_test.db") +
		"?_loc=UTC&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	instance := &database.Instance{}
	if err := instance.SetConfig(&database.Config{
		Enabled:  true,
		Driver:   database.DBSQLite3,
		Database: "rhinox_test.db",
	}); err != nil {
		t.Fatal(err)
	}
	instance.SetSQLiteConnection(db)
	instance.SetConnected(true)
	if err := instance.Setup(context.Background()); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() {
		if err := instance.CloseConnection(); err != nil {
			t.Errorf("close test database: %v", err)
		}
	})
	return instance
}

// InsertUser creates a user with generated contact details
func InsertUser(t *testing.T, instance *database.Instance, tag string) int64 {
	t.Helper()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	id, err := user.Insert(context.Background(), db, &user.User{
		Email:         tag + "@example.test",
		Phone:         "+23480" + tag,
		EmailVerified: true,
		PhoneVerified: true,
	})
	if err != nil {
		t.Fatalf("insert user %q: %v", tag, err)
	}
	return id
}

// InsertFiatWallet creates an active fiat wallet holding balance
func InsertFiatWallet(t *testing.T, instance *database.Instance, userID int64, code currency.Code, balance string) int64 {
	t.Helper()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	id, err := wallet.Insert(context.Background(), db, &wallet.Wallet{
		UserID:        userID,
		Currency:      code,
		Kind:          wallet.KindFiat,
		Balance:       money.MustParse(balance),
		LockedBalance: money.Zero,
		Active:        true,
	})
	if err != nil {
		t.Fatalf("insert fiat wallet: %v", err)
	}
	return id
}

// InsertVirtualAccount creates an active virtual account with equal account
// and available balances
func InsertVirtualAccount(t *testing.T, instance *database.Instance, userID int64, chain currency.Blockchain, code currency.Code, balance string) int64 {
	t.Helper()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	id, err := virtualaccount.Insert(context.Background(), db, &virtualaccount.VirtualAccount{
		UserID:           userID,
		Blockchain:       chain,
		Currency:         code,
		AccountBalance:   money.MustParse(balance),
		AvailableBalance: money.MustParse(balance),
		Active:           true,
	})
	if err != nil {
		t.Fatalf("insert virtual account: %v", err)
	}
	return id
}
