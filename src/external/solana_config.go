package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"passport-oracle/pkg/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type Keys struct {
	ProgramPublicKey solana.PublicKey
	PayerPublicKey   solana.PublicKey
	PayerPrivateKey  solana.PrivateKey
}

// SharedSolanaConfig guards the signing keys; the mutex exists so a future
// key-rotation path can swap them under running submissions.
type SharedSolanaConfig struct {
	Mu   sync.Mutex
	Keys *Keys
}

// LoadSolanaKeys reads the registry program id and the payer keypair from
// the environment. PAYER_KEYPAIR_PATH falls back to the standard keygen
// location under the user's home.
func LoadSolanaKeys() (*SharedSolanaConfig, error) {
	programIdStr := os.Getenv("PROGRAM_ID")
	if programIdStr == "" {
		return nil, fmt.Errorf("PROGRAM_ID env var is not set")
	}
	programId, err := solana.PublicKeyFromBase58(programIdStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PROGRAM_ID %q: %w", programIdStr, err)
	}

	keypairPath := os.Getenv("PAYER_KEYPAIR_PATH")
	if keypairPath == "" {
		homeDir, _ := os.UserHomeDir()
		keypairPath = filepath.Join(homeDir, ".config", "solana", "id.json")
	}
	payerPriv, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, fmt.Errorf("reading payer keypair from %s failed: %w", keypairPath, err)
	}

	keys := &Keys{
		ProgramPublicKey: programId,
		PayerPublicKey:   payerPriv.PublicKey(),
		PayerPrivateKey:  payerPriv,
	}

	logger.Default().Debugf("Registry program: %s", keys.ProgramPublicKey.String())
	logger.Default().Debugf("Payer: %s", keys.PayerPublicKey.String())

	return &SharedSolanaConfig{Keys: keys}, nil
}

// ValidateProgramExecutable confirms the configured program id points at a
// deployed program before any registrations are queued against it.
func (sc *SharedSolanaConfig) ValidateProgramExecutable(ctx context.Context, rpcClient *rpc.Client) error {
	acc, err := rpcClient.GetAccountInfo(ctx, sc.Keys.ProgramPublicKey)
	if err != nil {
		return fmt.Errorf("GetAccountInfo(program) failed: %w", err)
	}
	if acc == nil || acc.Value == nil || !acc.Value.Executable {
		return fmt.Errorf("%s is not an executable account", sc.Keys.ProgramPublicKey)
	}
	return nil
}
