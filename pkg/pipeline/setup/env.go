package setup

const (
	EnvEthereumRpcUrl        = "ETHEREUM_RPC_URL"
	EnvContractAddress       = "CONTRACT_ADDRESS"
	EnvPinataJwtKey          = "PINATA_JWT"
	EnvUploadServiceUrl      = "UPLOAD_SERVICE_URL"
	EnvPinGatewayHost        = "PIN_GATEWAY_HOST"
	EnvAccountPrivateKeySeed = "ACCOUNT_PRIVATE_KEY_SEED"
	EnvApiIpPort             = "API_IP_PORT"
)
