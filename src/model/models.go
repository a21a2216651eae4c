package model

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
)

type TransactionType string

const (
	TypeRegistration TransactionType = "registration"
	TypeBatchAnchor  TransactionType = "batch-anchor"
)

// QueuedTransaction is one unit of work for the delivery pipeline. Payload
// holds the serialized chain instruction input; the scheduler only touches
// Status, RetryCount and the attempt timestamps.
type QueuedTransaction struct {
	Id           uint              `gorm:"primaryKey;autoIncrement"`
	QueueId      string            `gorm:"uniqueIndex;size:36"`
	Type         TransactionType   `gorm:"size:32"`
	PassportHash string            `gorm:"index;size:64"`
	Payload      string
	Status       TransactionStatus `gorm:"index;size:16"`
	RetryCount   int
	MaxRetries   int
	CreatedAt    int64
	LastAttempt  int64
	NextAttempt  int64 `gorm:"index"`
	Error        string
	ResultHash   string `gorm:"size:128"`
}

// SubmittedClaim is the idempotency ledger: one row per passport hash that
// reached the chain, written only after confirmed success.
type SubmittedClaim struct {
	Id           uint   `gorm:"primaryKey;autoIncrement"`
	PassportHash string `gorm:"uniqueIndex;size:64"`
	ResultHash   string `gorm:"size:128"`
	SubmittedAt  int64
}
