package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	dtocommon "passport-oracle/pkg/dto_common"
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	reasoncodes "passport-oracle/pkg/reason_codes"
	"passport-oracle/src/model"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// ErrAlreadySubmitted rejects an enqueue for a passport hash the ledger
// already confirmed on chain.
var ErrAlreadySubmitted = errors.New("passport hash already submitted")

// SubmitResult is the chain-side outcome of one delivery.
type SubmitResult struct {
	Signature string
	AccountId string
}

// Submitter delivers one queued transaction to the chain. Implementations
// wrap terminal failures in PermanentError; anything else is retried.
type Submitter interface {
	Submit(ctx context.Context, tx model.QueuedTransaction) (SubmitResult, error)
}

const (
	defaultMaxRetries     = 5
	defaultSlots          = 5
	defaultBaseBackoff    = 2 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
	defaultAttemptTimeout = 30 * time.Second
)

// Pipeline drains the transaction queue toward the chain: a cron tick
// claims due work, each claimed item gets one bounded attempt, and the
// outcome either completes the item, schedules a backed-off retry, or
// fails it for good. Results and failures fan out over the queue
// publishers.
type Pipeline struct {
	repo             QueueRepository
	ledger           SubmissionLedger
	submitter        Submitter
	resultPublisher  rabbitmq.IRabbitmqPublisher
	failurePublisher rabbitmq.IRabbitmqPublisher
	log              *logger.Logger

	slots          chan struct{}
	maxRetries     int
	baseBackoff    time.Duration
	maxBackoff     time.Duration
	attemptTimeout time.Duration
	now            func() time.Time
	scheduler      *cron.Cron
}

type Option func(*Pipeline)

func WithPublishers(result, failure rabbitmq.IRabbitmqPublisher) Option {
	return func(p *Pipeline) {
		p.resultPublisher = result
		p.failurePublisher = failure
	}
}

func WithSlots(n int) Option {
	return func(p *Pipeline) { p.slots = make(chan struct{}, n) }
}

func WithMaxRetries(n int) Option {
	return func(p *Pipeline) { p.maxRetries = n }
}

func WithBackoff(base, max time.Duration) Option {
	return func(p *Pipeline) {
		p.baseBackoff = base
		p.maxBackoff = max
	}
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.attemptTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(repo QueueRepository, ledger SubmissionLedger, submitter Submitter, log *logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		repo:           repo,
		ledger:         ledger,
		submitter:      submitter,
		log:            log,
		slots:          make(chan struct{}, defaultSlots),
		maxRetries:     defaultMaxRetries,
		baseBackoff:    defaultBaseBackoff,
		maxBackoff:     defaultMaxBackoff,
		attemptTimeout: defaultAttemptTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) GetServiceName() string {
	return "transaction-pipeline"
}

// StartService recovers in-flight work from the previous run, then starts
// the dispatch tick.
func (p *Pipeline) StartService() {
	recovered, err := p.repo.ResetInFlight()
	if err != nil {
		p.log.Fatal(err, "failed to recover in-flight transactions")
	}
	if recovered > 0 {
		p.log.Infof("recovered %d in-flight transactions to pending", recovered)
	}

	p.scheduler = cron.New()
	if err := p.scheduler.AddFunc("@every 1s", p.dispatch); err != nil {
		p.log.Fatal(err, "failed to schedule pipeline dispatch")
	}
	p.scheduler.Start()
	p.log.Info("transaction pipeline started")
}

func (p *Pipeline) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// Enqueue accepts one registration for delivery. The idempotency ledger is
// consulted first so a passport already on chain is never submitted twice.
func (p *Pipeline) Enqueue(passportHash string, txType model.TransactionType, payload []byte) (string, error) {
	submitted, err := p.ledger.AlreadySubmitted(passportHash)
	if err != nil {
		return "", fmt.Errorf("ledger lookup: %w", err)
	}
	if submitted {
		return "", ErrAlreadySubmitted
	}

	now := p.now().Unix()
	tx := &model.QueuedTransaction{
		QueueId:      uuid.NewString(),
		Type:         txType,
		PassportHash: passportHash,
		Payload:      string(payload),
		Status:       model.StatusPending,
		MaxRetries:   p.maxRetries,
		CreatedAt:    now,
		NextAttempt:  now,
	}
	if err := p.repo.Enqueue(tx); err != nil {
		return "", fmt.Errorf("enqueue transaction: %w", err)
	}

	p.log.Infof("enqueued transaction %s for %s", tx.QueueId, passportHash)
	return tx.QueueId, nil
}

// dispatch claims due pending work, bounded by free slots, and runs each
// attempt on its own goroutine.
func (p *Pipeline) dispatch() {
	free := cap(p.slots) - len(p.slots)
	if free == 0 {
		return
	}

	due, err := p.repo.DuePending(p.now().Unix(), free)
	if err != nil {
		p.log.Error(err, "failed to fetch due transactions")
		return
	}

	for _, tx := range due {
		// The claim is a conditional update on the pending status so that
		// two overlapping ticks fetching the same due rows cannot both run
		// the attempt.
		claimed, err := p.repo.ClaimPending(tx.QueueId)
		if err != nil {
			p.log.Errorf(err, "failed to claim transaction %s", tx.QueueId)
			continue
		}
		if !claimed {
			continue
		}
		tx.Status = model.StatusProcessing

		p.slots <- struct{}{}
		go func(claimed model.QueuedTransaction) {
			defer func() { <-p.slots }()
			p.attempt(claimed)
		}(tx)
	}
}

// attempt runs one bounded delivery try and settles the transaction's next
// state.
func (p *Pipeline) attempt(tx model.QueuedTransaction) {
	ctx, cancel := context.WithTimeout(context.Background(), p.attemptTimeout)
	defer cancel()

	tx.LastAttempt = p.now().Unix()

	result, err := p.submitter.Submit(ctx, tx)
	if err == nil {
		p.complete(tx, result)
		return
	}

	tx.RetryCount++
	tx.Error = err.Error()

	if !IsTransient(err) {
		p.fail(tx, err, reasoncodes.ErrPermanentDelivery)
		return
	}
	if tx.RetryCount > tx.MaxRetries {
		p.fail(tx, fmt.Errorf("retries exhausted after %d attempts: %w", tx.RetryCount, err), reasoncodes.ErrRetriesExhausted)
		return
	}

	delay := Backoff(p.baseBackoff, p.maxBackoff, tx.RetryCount)
	tx.Status = model.StatusPending
	tx.NextAttempt = p.now().Add(delay).Unix()
	if updateErr := p.repo.Update(&tx); updateErr != nil {
		p.log.Errorf(updateErr, "failed to reschedule transaction %s", tx.QueueId)
		return
	}
	p.log.Warnf("transaction %s attempt %d failed, retrying in %s: %v", tx.QueueId, tx.RetryCount, delay, err)
}

func (p *Pipeline) complete(tx model.QueuedTransaction, result SubmitResult) {
	tx.Status = model.StatusCompleted
	tx.ResultHash = result.Signature
	tx.Error = ""
	if err := p.repo.Update(&tx); err != nil {
		p.log.Errorf(err, "failed to finalize transaction %s", tx.QueueId)
		return
	}

	if err := p.ledger.MarkSubmitted(tx.PassportHash, result.Signature, p.now().Unix()); err != nil {
		p.log.Errorf(err, "failed to record submission for %s", tx.PassportHash)
	}

	p.log.Infof("transaction %s confirmed: %s", tx.QueueId, result.Signature)

	if p.resultPublisher != nil {
		factory := dtocommon.NewRegistrationDtoFactory(tx.QueueId, tx.PassportHash, []byte(tx.Payload))
		if err := p.resultPublisher.Publish(factory.CreateResultDto(result.Signature, result.AccountId)); err != nil {
			p.log.Errorf(err, "failed to publish result for %s", tx.QueueId)
		}
	}
}

func (p *Pipeline) fail(tx model.QueuedTransaction, cause error, code reasoncodes.ReasonCode) {
	tx.Status = model.StatusFailed
	tx.Error = cause.Error()
	if err := p.repo.Update(&tx); err != nil {
		p.log.Errorf(err, "failed to mark transaction %s failed", tx.QueueId)
		return
	}

	p.log.Errorf(cause, "transaction %s failed permanently", tx.QueueId)

	if p.failurePublisher != nil {
		factory := dtocommon.NewRegistrationDtoFactory(tx.QueueId, tx.PassportHash, []byte(tx.Payload))
		if err := p.failurePublisher.Publish(factory.CreateErrorDto(cause, code)); err != nil {
			p.log.Errorf(err, "failed to publish failure for %s", tx.QueueId)
		}
	}
}
