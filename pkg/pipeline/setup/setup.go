package setup

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultContractAddress is the token contract deployment minted against
// when CONTRACT_ADDRESS is not set.
const DefaultContractAddress = "0x06269E8c9B09245C01c8d60bB478AeeA0B3089fB"

type SetupResult struct {
	EthereumRpcUrl        string
	ContractAddress       common.Address
	PinataJwtKey          string
	UploadServiceUrl      string
	PinGatewayHost        string
	AccountPrivateKeySeed []byte
	ApiIpPort             string
}

func Setup(ctx context.Context) (*SetupResult, error) {
	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get config from env: %v", err)
	}

	contractAddress := config.ContractAddress
	if contractAddress == "" {
		contractAddress = DefaultContractAddress
	}

	var seed []byte
	if config.AccountPrivateKeySeed != "" {
		seed, err = hex.DecodeString(strings.TrimPrefix(config.AccountPrivateKeySeed, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode private key seed: %v", err)
		}
	} else {
		slog.Warn("no account private key seed configured, minting will be unavailable")
	}

	return &SetupResult{
		EthereumRpcUrl:        config.EthereumRpcUrl,
		ContractAddress:       common.HexToAddress(contractAddress),
		PinataJwtKey:          config.PinataJwtKey,
		UploadServiceUrl:      config.UploadServiceUrl,
		PinGatewayHost:        config.PinGatewayHost,
		AccountPrivateKeySeed: seed,
		ApiIpPort:             config.ApiIpPort,
	}, nil
}
