package external

import (
	"context"
	"encoding/json"
	"fmt"

	"passport-oracle/pkg/logger"
	"passport-oracle/src/model"
	"passport-oracle/src/pipeline"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/near/borsh-go"
)

// RegistrationPayload is the borsh-encoded instruction data the registry
// program expects. PassportHash is the 32-byte commitment, Signature the
// Oracle's EdDSA signature over the canonical attestation message.
type RegistrationPayload struct {
	PassportHash     [32]byte
	Timestamp        int64
	RegistrationType uint8
	Signature        []byte
}

// SolanaSubmitter delivers queued registrations to the registry program:
// each delivery creates a fresh data account and invokes the program with
// the borsh payload in one transaction.
type SolanaSubmitter struct {
	config    *SharedSolanaConfig
	rpcClient *rpc.Client
	log       *logger.Logger
}

func NewSolanaSubmitter(config *SharedSolanaConfig, endpoint string, log *logger.Logger) *SolanaSubmitter {
	return &SolanaSubmitter{
		config:    config,
		rpcClient: rpc.New(endpoint),
		log:       log,
	}
}

func (s *SolanaSubmitter) Submit(ctx context.Context, tx model.QueuedTransaction) (pipeline.SubmitResult, error) {
	data, err := s.instructionData(tx)
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Permanent(err)
	}

	return s.sendRegistration(ctx, data)
}

func (s *SolanaSubmitter) instructionData(tx model.QueuedTransaction) ([]byte, error) {
	switch tx.Type {
	case model.TypeBatchAnchor:
		var payload AnchorPayload
		if err := json.Unmarshal([]byte(tx.Payload), &payload); err != nil {
			return nil, fmt.Errorf("decode anchor payload: %w", err)
		}
		data, err := borsh.Serialize(payload)
		if err != nil {
			return nil, fmt.Errorf("borsh serialize anchor: %w", err)
		}
		return data, nil
	default:
		var payload RegistrationPayload
		if err := json.Unmarshal([]byte(tx.Payload), &payload); err != nil {
			return nil, fmt.Errorf("decode registration payload: %w", err)
		}
		data, err := borsh.Serialize(payload)
		if err != nil {
			return nil, fmt.Errorf("borsh serialize registration: %w", err)
		}
		return data, nil
	}
}

func (s *SolanaSubmitter) sendRegistration(ctx context.Context, data []byte) (pipeline.SubmitResult, error) {
	space := calculateRequiredAccountSpace(data)

	rent, err := s.rpcClient.GetMinimumBalanceForRentExemption(ctx, space, rpc.CommitmentFinalized)
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Transient(fmt.Errorf("rent exemption query: %w", err))
	}

	dataAccount, err := solana.NewRandomPrivateKey()
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Permanent(fmt.Errorf("generate data account: %w", err))
	}

	s.config.Mu.Lock()
	createAccountInstruction := system.NewCreateAccountInstruction(
		rent,
		space,
		s.config.Keys.ProgramPublicKey,
		s.config.Keys.PayerPublicKey,
		dataAccount.PublicKey(),
	).Build()

	accounts := []*solana.AccountMeta{
		solana.NewAccountMeta(dataAccount.PublicKey(), true, true),
	}
	registerInstruction := solana.NewInstruction(
		s.config.Keys.ProgramPublicKey,
		accounts,
		data,
	)

	payerPublic := s.config.Keys.PayerPublicKey
	payerPrivate := s.config.Keys.PayerPrivateKey
	s.config.Mu.Unlock()

	latest, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Transient(fmt.Errorf("latest blockhash: %w", err))
	}

	transaction, err := solana.NewTransaction(
		[]solana.Instruction{createAccountInstruction, registerInstruction},
		latest.Value.Blockhash,
		solana.TransactionPayer(payerPublic),
	)
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Permanent(fmt.Errorf("build transaction: %w", err))
	}

	_, err = transaction.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(payerPublic) {
			return &payerPrivate
		}
		if pk.Equals(dataAccount.PublicKey()) {
			return &dataAccount
		}
		return nil
	})
	if err != nil {
		return pipeline.SubmitResult{}, pipeline.Permanent(fmt.Errorf("sign transaction: %w", err))
	}

	signature, err := s.rpcClient.SendTransactionWithOpts(
		ctx,
		transaction,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		s.log.Errorf(err, "failed to send registration transaction, payload %d bytes, space %d", len(data), space)
		return pipeline.SubmitResult{}, err
	}

	s.log.Infof("registration transaction sent: %s, account %s", signature, dataAccount.PublicKey())
	return pipeline.SubmitResult{
		Signature: signature.String(),
		AccountId: dataAccount.PublicKey().String(),
	}, nil
}

// calculateRequiredAccountSpace sizes the data account with headroom for
// program metadata, rounded to 8 bytes, never below 2048.
func calculateRequiredAccountSpace(data []byte) uint64 {
	dataSize := len(data)

	var totalSize int
	switch {
	case dataSize > 10000:
		totalSize = int(float64(dataSize) * 1.5)
	case dataSize > 1000:
		totalSize = dataSize + 2048
	default:
		totalSize = dataSize + 1024
	}

	if totalSize%8 != 0 {
		totalSize += 8 - (totalSize % 8)
	}
	if totalSize < 2048 {
		totalSize = 2048
	}

	return uint64(totalSize)
}
