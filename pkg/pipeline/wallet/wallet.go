package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Provider is the wallet capability injected into the mint stage: it can
// authorize accounts and produce a transaction signer. Presence is
// environment-dependent; a nil Provider means no wallet is available.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Signer(ctx context.Context) (*bind.TransactOpts, error)
}

type Wallet struct {
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int
}

func NewWallet(seed []byte, chainID *big.Int) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, errors.New("seed is empty")
	}
	if chainID == nil {
		return nil, errors.New("chain id is nil")
	}

	privateKey, err := crypto.ToECDSA(crypto.Keccak256(seed))
	if err != nil {
		return nil, err
	}

	return &Wallet{
		privateKey: privateKey,
		chainID:    chainID,
	}, nil
}

func (w *Wallet) Address() common.Address {
	return crypto.PubkeyToAddress(w.privateKey.PublicKey)
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{w.Address()}, nil
}

func (w *Wallet) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(w.privateKey, w.chainID)
}
