package mint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
	"github.com/atelierlabs/mintline/pkg/pipeline/nft"
	"github.com/atelierlabs/mintline/pkg/pipeline/wallet"
)

// Contract is the mint entry point of the deployed token contract.
type Contract interface {
	MintNFT(opts *bind.TransactOpts, recipient common.Address, tokenURI string) (*types.Transaction, error)
}

// Transaction is the caller-visible result of a mint. Confirmed flips to
// true exactly once, when inclusion is observed.
type Transaction struct {
	Hash      string `json:"hash"`
	Confirmed bool   `json:"confirmed"`
}

// Minter submits a single mint transaction and awaits its inclusion. Minting
// is not idempotent: every successful call mints a new, distinct token.
type Minter struct {
	provider    wallet.Provider
	contract    Contract
	backend     bind.DeployBackend
	gatewayHost string
}

type MinterOptions struct {
	// Provider may be nil: the environment has no wallet.
	Provider wallet.Provider
	Contract Contract
	Backend  bind.DeployBackend

	// GatewayHost is the deployment-specific gateway whose delivery
	// addresses are rewritten into the tokenURI form the contract expects.
	GatewayHost string
}

func NewMinter(opts MinterOptions) (*Minter, error) {
	if opts.Contract == nil {
		return nil, errors.New("contract is nil")
	}
	if opts.Backend == nil {
		return nil, errors.New("backend is nil")
	}
	if opts.GatewayHost == "" {
		return nil, errors.New("gateway host is empty")
	}

	return &Minter{
		provider:    opts.Provider,
		contract:    opts.Contract,
		backend:     opts.Backend,
		gatewayHost: opts.GatewayHost,
	}, nil
}

func (m *Minter) WalletAvailable() bool {
	return m.provider != nil
}

func (m *Minter) Mint(ctx context.Context, metadataAddress string) (*Transaction, error) {
	if metadataAddress == "" {
		return nil, fmt.Errorf("%w: metadata must be uploaded first", errs.ErrValidation)
	}

	if m.provider == nil {
		return nil, errs.ErrWalletUnavailable
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAuthorization, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no account authorized", errs.ErrAuthorization)
	}

	auth, err := m.provider.Signer(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAuthorization, err)
	}
	auth.Context = ctx

	tokenURI := nft.RewriteGatewayURL(metadataAddress, m.gatewayHost)

	tx, err := m.contract.MintNFT(auth, accounts[0], tokenURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMintSubmission, err)
	}

	slog.Info("mint transaction submitted", "hash", tx.Hash().Hex(), "recipient", accounts[0].Hex(), "tokenURI", tokenURI)

	receipt, err := bind.WaitMined(ctx, m.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMintConfirmation, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s reverted", errs.ErrMintConfirmation, tx.Hash().Hex())
	}

	return &Transaction{
		Hash:      tx.Hash().Hex(),
		Confirmed: true,
	}, nil
}
