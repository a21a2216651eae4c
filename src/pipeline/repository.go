package pipeline

import (
	"errors"

	"passport-oracle/src/model"

	"gorm.io/gorm"
)

// QueueRepository persists pipeline work items.
type QueueRepository interface {
	Enqueue(tx *model.QueuedTransaction) error
	DuePending(now int64, limit int) ([]model.QueuedTransaction, error)
	ClaimPending(queueId string) (bool, error)
	Update(tx *model.QueuedTransaction) error
	ResetInFlight() (int64, error)
	GetByQueueId(queueId string) (*model.QueuedTransaction, error)
}

// SubmissionLedger answers whether a passport hash already reached the
// chain. Rows are written only after confirmed success, so a crash between
// submit and mark is resolved in favor of retrying.
type SubmissionLedger interface {
	AlreadySubmitted(passportHash string) (bool, error)
	MarkSubmitted(passportHash, resultHash string, at int64) error
}

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Enqueue(tx *model.QueuedTransaction) error {
	return r.db.Create(tx).Error
}

func (r *queueRepository) DuePending(now int64, limit int) ([]model.QueuedTransaction, error) {
	var due []model.QueuedTransaction
	err := r.db.
		Where("status = ? AND next_attempt <= ?", model.StatusPending, now).
		Order("next_attempt asc").
		Limit(limit).
		Find(&due).Error
	return due, err
}

// ClaimPending flips one transaction from pending to processing with a
// conditional update. Overlapping dispatch ticks race on the same due
// rows; only the tick whose update matched may run the attempt.
func (r *queueRepository) ClaimPending(queueId string) (bool, error) {
	result := r.db.
		Model(&model.QueuedTransaction{}).
		Where("queue_id = ? AND status = ?", queueId, model.StatusPending).
		Update("status", model.StatusProcessing)
	return result.RowsAffected == 1, result.Error
}

func (r *queueRepository) Update(tx *model.QueuedTransaction) error {
	return r.db.Save(tx).Error
}

// ResetInFlight returns transactions stranded in processing by a previous
// run to pending. Called once on startup before the scheduler starts.
func (r *queueRepository) ResetInFlight() (int64, error) {
	result := r.db.
		Model(&model.QueuedTransaction{}).
		Where("status = ?", model.StatusProcessing).
		Update("status", model.StatusPending)
	return result.RowsAffected, result.Error
}

func (r *queueRepository) GetByQueueId(queueId string) (*model.QueuedTransaction, error) {
	var tx model.QueuedTransaction
	err := r.db.Where("queue_id = ?", queueId).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

type submissionLedger struct {
	db *gorm.DB
}

func NewSubmissionLedger(db *gorm.DB) SubmissionLedger {
	return &submissionLedger{db: db}
}

func (l *submissionLedger) AlreadySubmitted(passportHash string) (bool, error) {
	var claim model.SubmittedClaim
	err := l.db.Where("passport_hash = ?", passportHash).First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *submissionLedger) MarkSubmitted(passportHash, resultHash string, at int64) error {
	return l.db.Create(&model.SubmittedClaim{
		PassportHash: passportHash,
		ResultHash:   resultHash,
		SubmittedAt:  at,
	}).Error
}
