// Package arttoken binds the deployed ERC-721 mint contract. Only the
// mintNFT entry point is bound; the rest of the contract surface is not used
// by this module.
package arttoken

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ArtTokenMetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[{\"internalType\":\"address\",\"name\":\"recipient\",\"type\":\"address\"},{\"internalType\":\"string\",\"name\":\"tokenURI\",\"type\":\"string\"}],\"name\":\"mintNFT\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"}]",
}

type ArtToken struct {
	contract *bind.BoundContract
}

func NewArtToken(address common.Address, backend bind.ContractBackend) (*ArtToken, error) {
	parsed, err := ArtTokenMetaData.GetAbi()
	if err != nil {
		return nil, err
	}

	return &ArtToken{
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

// MintNFT submits mintNFT(recipient, tokenURI) and returns the pending
// transaction.
func (t *ArtToken) MintNFT(opts *bind.TransactOpts, recipient common.Address, tokenURI string) (*types.Transaction, error) {
	return t.contract.Transact(opts, "mintNFT", recipient, tokenURI)
}
