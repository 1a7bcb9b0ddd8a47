package database

import (
	"context"
	"strings"
)

// Embedded DDL per dialect. The two blocks must stay column-compatible; the
// repositories address columns by name only.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL UNIQUE,
	email_verified INTEGER NOT NULL DEFAULT 0,
	phone_verified INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS wallets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	currency TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('fiat','crypto')),
	balance TEXT NOT NULL DEFAULT '0',
	locked_balance TEXT NOT NULL DEFAULT '0',
	active INTEGER NOT NULL DEFAULT 1,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, currency, kind)
);
CREATE TABLE IF NOT EXISTS virtual_accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	blockchain TEXT NOT NULL,
	currency TEXT NOT NULL,
	account_balance TEXT NOT NULL DEFAULT '0',
	available_balance TEXT NOT NULL DEFAULT '0',
	active INTEGER NOT NULL DEFAULT 1,
	frozen INTEGER NOT NULL DEFAULT 0,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, blockchain, currency)
);
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	wallet_id INTEGER NOT NULL REFERENCES wallets(id),
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL,
	fee TEXT NOT NULL DEFAULT '0',
	reference TEXT NOT NULL UNIQUE,
	channel TEXT,
	description TEXT,
	p2p_step TEXT,
	correlation_id TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transactions_wallet ON transactions (wallet_id, created_at);
CREATE TABLE IF NOT EXISTS exchange_rates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	rate TEXT NOT NULL,
	inverse_rate TEXT,
	active INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (from_currency, to_currency)
);
CREATE TABLE IF NOT EXISTS payment_methods (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	type TEXT NOT NULL CHECK (type IN ('bank_account','mobile_money','rhinoxpay_id')),
	bank_name TEXT,
	provider_id TEXT,
	rhinox_currency TEXT,
	account_name TEXT,
	account_number TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS p2p_ads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vendor_user_id INTEGER NOT NULL REFERENCES users(id),
	ad_type TEXT NOT NULL CHECK (ad_type IN ('buy','sell')),
	crypto_currency TEXT NOT NULL,
	fiat_currency TEXT NOT NULL,
	price TEXT NOT NULL,
	volume TEXT NOT NULL,
	min_order TEXT NOT NULL,
	max_order TEXT NOT NULL,
	auto_accept INTEGER NOT NULL DEFAULT 0,
	payment_method_ids TEXT NOT NULL DEFAULT '[]',
	processing_time_minutes INTEGER NOT NULL DEFAULT 30,
	status TEXT NOT NULL DEFAULT 'available',
	is_online INTEGER NOT NULL DEFAULT 1,
	orders_received INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS p2p_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ad_id INTEGER NOT NULL REFERENCES p2p_ads(id),
	vendor_user_id INTEGER NOT NULL REFERENCES users(id),
	counterparty_user_id INTEGER NOT NULL REFERENCES users(id),
	ad_type TEXT NOT NULL,
	crypto_currency TEXT NOT NULL,
	fiat_currency TEXT NOT NULL,
	crypto_amount TEXT NOT NULL,
	fiat_amount TEXT NOT NULL,
	price TEXT NOT NULL,
	payment_method_id INTEGER NOT NULL,
	counterparty_method_id INTEGER NOT NULL,
	payment_channel TEXT NOT NULL CHECK (payment_channel IN ('offline','rhinoxpay_id')),
	status TEXT NOT NULL DEFAULT 'pending',
	buyer_id INTEGER NOT NULL,
	seller_id INTEGER NOT NULL,
	chat_thread_id TEXT NOT NULL,
	processing_time_minutes INTEGER NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	accepted_at TIMESTAMP,
	expires_at TIMESTAMP,
	payment_made_at TIMESTAMP,
	payment_received_at TIMESTAMP,
	completed_at TIMESTAMP,
	cancelled_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_p2p_orders_status ON p2p_orders (status, expires_at);
CREATE TABLE IF NOT EXISTS provision_jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'queued',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL UNIQUE,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS wallets (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	currency TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('fiat','crypto')),
	balance NUMERIC(38,18) NOT NULL DEFAULT 0,
	locked_balance NUMERIC(38,18) NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, currency, kind)
);
CREATE TABLE IF NOT EXISTS virtual_accounts (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	blockchain TEXT NOT NULL,
	currency TEXT NOT NULL,
	account_balance NUMERIC(38,18) NOT NULL DEFAULT 0,
	available_balance NUMERIC(38,18) NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	frozen BOOLEAN NOT NULL DEFAULT FALSE,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, blockchain, currency)
);
CREATE TABLE IF NOT EXISTS transactions (
	id BIGSERIAL PRIMARY KEY,
	wallet_id BIGINT NOT NULL REFERENCES wallets(id),
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	amount NUMERIC(38,18) NOT NULL,
	currency TEXT NOT NULL,
	fee NUMERIC(38,18) NOT NULL DEFAULT 0,
	reference TEXT NOT NULL UNIQUE,
	channel TEXT,
	description TEXT,
	p2p_step TEXT,
	correlation_id TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transactions_wallet ON transactions (wallet_id, created_at);
CREATE TABLE IF NOT EXISTS exchange_rates (
	id BIGSERIAL PRIMARY KEY,
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	rate NUMERIC(38,18) NOT NULL,
	inverse_rate NUMERIC(38,18),
	active BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (from_currency, to_currency)
);
CREATE TABLE IF NOT EXISTS payment_methods (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	type TEXT NOT NULL CHECK (type IN ('bank_account','mobile_money','rhinoxpay_id')),
	bank_name TEXT,
	provider_id TEXT,
	rhinox_currency TEXT,
	account_name TEXT,
	account_number TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS p2p_ads (
	id BIGSERIAL PRIMARY KEY,
	vendor_user_id BIGINT NOT NULL REFERENCES users(id),
	ad_type TEXT NOT NULL CHECK (ad_type IN ('buy','sell')),
	crypto_currency TEXT NOT NULL,
	fiat_currency TEXT NOT NULL,
	price NUMERIC(38,18) NOT NULL,
	volume NUMERIC(38,18) NOT NULL,
	min_order NUMERIC(38,18) NOT NULL,
	max_order NUMERIC(38,18) NOT NULL,
	auto_accept BOOLEAN NOT NULL DEFAULT FALSE,
	payment_method_ids TEXT NOT NULL DEFAULT '[]',
	processing_time_minutes INT NOT NULL DEFAULT 30,
	status TEXT NOT NULL DEFAULT 'available',
	is_online BOOLEAN NOT NULL DEFAULT TRUE,
	orders_received BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS p2p_orders (
	id BIGSERIAL PRIMARY KEY,
	ad_id BIGINT NOT NULL REFERENCES p2p_ads(id),
	vendor_user_id BIGINT NOT NULL REFERENCES users(id),
	counterparty_user_id BIGINT NOT NULL REFERENCES users(id),
	ad_type TEXT NOT NULL,
	crypto_currency TEXT NOT NULL,
	fiat_currency TEXT NOT NULL,
	crypto_amount NUMERIC(38,18) NOT NULL,
	fiat_amount NUMERIC(38,18) NOT NULL,
	price NUMERIC(38,18) NOT NULL,
	payment_method_id BIGINT NOT NULL,
	counterparty_method_id BIGINT NOT NULL,
	payment_channel TEXT NOT NULL CHECK (payment_channel IN ('offline','rhinoxpay_id')),
	status TEXT NOT NULL DEFAULT 'pending',
	buyer_id BIGINT NOT NULL,
	seller_id BIGINT NOT NULL,
	chat_thread_id TEXT NOT NULL,
	processing_time_minutes INT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	accepted_at TIMESTAMPTZ,
	expires_at TIMESTAMPTZ,
	payment_made_at TIMESTAMPTZ,
	payment_received_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	cancelled_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_p2p_orders_status ON p2p_orders (status, expires_at);
CREATE TABLE IF NOT EXISTS provision_jobs (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'queued',
	attempts INT NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Setup creates the schema for the configured driver if not present
func (i *Instance) Setup(ctx context.Context) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	schema := sqliteSchema
	if i.GetConfig().Driver == DBPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
