// Package provisionjob persists the wallet-provisioning queue. One job per
// user; enqueueing an already queued user is a no-op, which gives the worker
// at-least-once delivery with per-user idempotency.
package provisionjob

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
)

// Job statuses
const (
	StatusQueued = "queued"
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Job is one queued provisioning request
type Job struct {
	ID        int64
	UserID    int64
	Status    string
	Attempts  int
	LastError null.String
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Enqueue adds a provisioning job for the user. Already queued users are
// left untouched.
func Enqueue(ctx context.Context, exec repository.Executor, userID int64) error {
	_, err := repository.InsertReturningID(ctx, exec,
		`INSERT INTO provision_jobs (user_id) VALUES (?)`, userID)
	if errors.Is(err, common.ErrDuplicateKey) {
		return nil
	}
	return err
}

// NextQueued returns up to limit queued jobs, oldest first
func NextQueued(ctx context.Context, exec repository.Executor, limit int) ([]Job, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT id, user_id, status, attempts, last_error, created_at, updated_at
		 FROM provision_jobs WHERE status = ? ORDER BY id LIMIT ?`),
		StatusQueued, limit)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.UserID, &j.Status, &j.Attempts,
			&j.LastError, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, database.TranslateError(err)
		}
		out = append(out, j)
	}
	return out, database.TranslateError(rows.Err())
}

// MarkDone completes the job
func MarkDone(ctx context.Context, exec repository.Executor, id int64) error {
	return setStatus(ctx, exec, id, StatusDone, "")
}

// MarkFailed records a failed attempt; the job stays queued until attempts
// reach the worker's cap, at which point the worker marks it failed
func MarkFailed(ctx context.Context, exec repository.Executor, id int64, terminal bool, lastError string) error {
	status := StatusQueued
	if terminal {
		status = StatusFailed
	}
	return setStatus(ctx, exec, id, status, lastError)
}

func setStatus(ctx context.Context, exec repository.Executor, id int64, status, lastError string) error {
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE provision_jobs SET status = ?, attempts = attempts + 1,
		 last_error = ?, updated_at = ? WHERE id = ?`),
		status, null.NewString(lastError, lastError != ""), time.Now().UTC(), id)
	if err != nil {
		return database.TranslateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.TranslateError(err)
	}
	if n == 0 {
		return database.TranslateError(sql.ErrNoRows)
	}
	return nil
}
