package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"passport-oracle/pkg/logger"
	"passport-oracle/src/database"
	"passport-oracle/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pipelineNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err, "failed to open test database")
	return db
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	outcome func(call int) (SubmitResult, error)
}

func (f *fakeSubmitter) Submit(_ context.Context, _ model.QueuedTransaction) (SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.outcome(f.calls)
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestPipeline(t *testing.T, db *gorm.DB, submitter Submitter, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return pipelineNow })}, opts...)
	return New(NewQueueRepository(db), NewSubmissionLedger(db), submitter, logger.New(), opts...)
}

func mustEnqueue(t *testing.T, p *Pipeline, passportHash string) model.QueuedTransaction {
	t.Helper()
	queueId, err := p.Enqueue(passportHash, model.TypeRegistration, []byte(`{}`))
	require.NoError(t, err)

	tx, err := p.repo.GetByQueueId(queueId)
	require.NoError(t, err)
	return *tx
}

func TestEnqueueCreatesPendingTransaction(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, &fakeSubmitter{})

	tx := mustEnqueue(t, p, "hash-pending")

	assert.Equal(t, model.StatusPending, tx.Status)
	assert.Equal(t, 0, tx.RetryCount)
	assert.Equal(t, pipelineNow.Unix(), tx.NextAttempt)

	due, err := p.repo.DuePending(pipelineNow.Unix(), 10)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestEnqueueIdempotency(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, &fakeSubmitter{})

	require.NoError(t, p.ledger.MarkSubmitted("hash-done", "sig", pipelineNow.Unix()))

	_, err := p.Enqueue("hash-done", model.TypeRegistration, []byte(`{}`))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestAttemptSuccess(t *testing.T) {
	db := setupTestDB(t)
	submitter := &fakeSubmitter{outcome: func(int) (SubmitResult, error) {
		return SubmitResult{Signature: "tx-sig", AccountId: "account"}, nil
	}}
	p := newTestPipeline(t, db, submitter)

	tx := mustEnqueue(t, p, "hash-success")
	p.attempt(tx)

	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, "tx-sig", stored.ResultHash)
	assert.Empty(t, stored.Error)

	submitted, err := p.ledger.AlreadySubmitted("hash-success")
	require.NoError(t, err)
	assert.True(t, submitted, "confirmed success must be recorded in the ledger")
}

func TestAttemptPermanentFailureDoesNotRetry(t *testing.T) {
	db := setupTestDB(t)
	submitter := &fakeSubmitter{outcome: func(int) (SubmitResult, error) {
		return SubmitResult{}, Permanent(errors.New("custom program error: 0x1"))
	}}
	p := newTestPipeline(t, db, submitter)

	tx := mustEnqueue(t, p, "hash-permanent")
	p.attempt(tx)

	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.Equal(t, 1, submitter.callCount(), "permanent failures get exactly one attempt")

	submitted, err := p.ledger.AlreadySubmitted("hash-permanent")
	require.NoError(t, err)
	assert.False(t, submitted, "failed deliveries must not enter the ledger")
}

func TestAttemptTransientFailureReschedules(t *testing.T) {
	db := setupTestDB(t)
	submitter := &fakeSubmitter{outcome: func(int) (SubmitResult, error) {
		return SubmitResult{}, Transient(errors.New("rpc timeout"))
	}}
	p := newTestPipeline(t, db, submitter, WithMaxRetries(3), WithBackoff(2*time.Second, time.Minute))

	tx := mustEnqueue(t, p, "hash-transient")
	p.attempt(tx)

	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Greater(t, stored.NextAttempt, pipelineNow.Unix(), "retry must be scheduled in the future")
	assert.Contains(t, stored.Error, "rpc timeout")
}

func TestAttemptExhaustsRetries(t *testing.T) {
	db := setupTestDB(t)
	submitter := &fakeSubmitter{outcome: func(int) (SubmitResult, error) {
		return SubmitResult{}, Transient(errors.New("node is behind"))
	}}
	p := newTestPipeline(t, db, submitter, WithMaxRetries(2))

	tx := mustEnqueue(t, p, "hash-exhausted")

	// maxRetries counts retries after the initial attempt, so two retries
	// means three submissions before the transaction fails for good.
	p.attempt(tx)
	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.Status)

	p.attempt(*stored)
	stored, err = p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.Status)

	p.attempt(*stored)
	stored, err = p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.Equal(t, 3, submitter.callCount())
}

func TestClaimPendingIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, &fakeSubmitter{})

	tx := mustEnqueue(t, p, "hash-contested")

	claimed, err := p.repo.ClaimPending(tx.QueueId)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim on a pending transaction must win")

	claimed, err = p.repo.ClaimPending(tx.QueueId)
	require.NoError(t, err)
	assert.False(t, claimed, "a transaction already in processing must not be claimed again")

	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, stored.Status)
}

func TestResetInFlightRecoversProcessing(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, &fakeSubmitter{})

	tx := mustEnqueue(t, p, "hash-crashed")
	tx.Status = model.StatusProcessing
	require.NoError(t, p.repo.Update(&tx))

	recovered, err := p.repo.ResetInFlight()
	require.NoError(t, err)
	assert.Equal(t, int64(1), recovered)

	stored, err := p.repo.GetByQueueId(tx.QueueId)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestDuePendingRespectsSchedule(t *testing.T) {
	db := setupTestDB(t)
	p := newTestPipeline(t, db, &fakeSubmitter{})

	tx := mustEnqueue(t, p, "hash-later")
	tx.NextAttempt = pipelineNow.Add(time.Minute).Unix()
	require.NoError(t, p.repo.Update(&tx))

	due, err := p.repo.DuePending(pipelineNow.Unix(), 10)
	require.NoError(t, err)
	assert.Empty(t, due, "transactions scheduled in the future are not due")

	due, err = p.repo.DuePending(pipelineNow.Add(2*time.Minute).Unix(), 10)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestBackoffBounds(t *testing.T) {
	base := 2 * time.Second
	max := time.Minute

	for retryCount := 1; retryCount <= 10; retryCount++ {
		delay := Backoff(base, max, retryCount)

		floor := base << (retryCount - 1)
		if floor > max {
			floor = max
		}
		assert.GreaterOrEqual(t, delay, floor, "retry %d below exponential floor", retryCount)
		assert.LessOrEqual(t, delay, max, "retry %d above cap", retryCount)
	}
}

func TestIsTransientClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"explicit transient", Transient(errors.New("anything")), true},
		{"explicit permanent", Permanent(errors.New("anything")), false},
		{"wrapped permanent", fmt.Errorf("submit: %w", Permanent(errors.New("bad"))), false},
		{"context deadline", context.DeadlineExceeded, true},
		{"program rejection", errors.New("custom program error: 0x0"), false},
		{"insufficient funds", errors.New("Insufficient Funds for rent"), false},
		{"account collision", errors.New("account address already in use"), false},
		{"unknown error defaults transient", errors.New("weird new rpc failure"), true},
		{"blockhash expiry", errors.New("blockhash not found"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
		})
	}
}
