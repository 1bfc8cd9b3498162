package setup

import (
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	EthereumRpcUrl        string
	ContractAddress       string
	PinataJwtKey          string
	UploadServiceUrl      string
	PinGatewayHost        string
	AccountPrivateKeySeed string
	ApiIpPort             string
}

func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		EthereumRpcUrl:        os.Getenv(EnvEthereumRpcUrl),
		ContractAddress:       os.Getenv(EnvContractAddress),
		PinataJwtKey:          os.Getenv(EnvPinataJwtKey),
		UploadServiceUrl:      os.Getenv(EnvUploadServiceUrl),
		PinGatewayHost:        os.Getenv(EnvPinGatewayHost),
		AccountPrivateKeySeed: os.Getenv(EnvAccountPrivateKeySeed),
		ApiIpPort:             os.Getenv(EnvApiIpPort),
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.EthereumRpcUrl == "" {
		return errors.New("ETHEREUM_RPC_URL is required")
	}
	if c.PinGatewayHost == "" {
		return errors.New("PIN_GATEWAY_HOST is required")
	}
	if c.PinataJwtKey == "" && c.UploadServiceUrl == "" {
		return errors.New("one of PINATA_JWT or UPLOAD_SERVICE_URL is required")
	}
	if c.PinataJwtKey != "" && c.UploadServiceUrl != "" {
		return errors.New("PINATA_JWT and UPLOAD_SERVICE_URL are mutually exclusive")
	}
	if c.ContractAddress != "" && !common.IsHexAddress(c.ContractAddress) {
		return errors.New("CONTRACT_ADDRESS is not a valid address")
	}

	return nil
}
