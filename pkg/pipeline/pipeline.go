// Package pipeline drives a single file → metadata → mint run against the
// content-upload service and the token contract. The Controller owns all run
// state; transitions fire only on explicit caller action and each stage is a
// single attempt.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/atelierlabs/mintline/pkg/bindings/arttoken"
	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
	"github.com/atelierlabs/mintline/pkg/pipeline/filestorage"
	"github.com/atelierlabs/mintline/pkg/pipeline/mint"
	"github.com/atelierlabs/mintline/pkg/pipeline/nft"
	"github.com/atelierlabs/mintline/pkg/pipeline/setup"
	"github.com/atelierlabs/mintline/pkg/pipeline/wallet"
)

// DefaultMintGatewayHost is the deployment's gateway. The mint stage rewrites
// metadata addresses against exactly this host; the metadata stage is keyed
// to the configured pin gateway instead. The two are kept separate on
// purpose, matching the deployed contract's expectations.
const DefaultMintGatewayHost = "amber-logical-toad-402.mypinata.cloud"

type run struct {
	stage           Stage
	fileName        string
	fileContent     []byte
	imageAddress    string
	metadata        nft.AssetMetadata
	hasMetadata     bool
	metadataAddress string
	mintStatus      MintStatus
	mintTx          *mint.Transaction
}

type Controller struct {
	uploader   filestorage.Uploader
	minter     *mint.Minter
	httpClient *http.Client
	apiRouter  *gin.Engine

	pinGatewayHost string
	apiIpPort      string

	// tasks has one worker: stage bodies never run in parallel, so stage
	// n+1 cannot begin before stage n's result is committed.
	tasks pond.Pool
	busy  [stageCount]atomic.Bool

	previewCache *expirable.LRU[string, string]
	previewGroup singleflight.Group

	mu  sync.Mutex
	run run
}

type ControllerConfig struct {
	Uploader       filestorage.Uploader
	WalletProvider wallet.Provider
	Contract       mint.Contract
	Backend        bind.DeployBackend
	HttpClient     *http.Client

	PinGatewayHost  string
	MintGatewayHost string
	ApiIpPort       string
}

func NewController(config *ControllerConfig) (*Controller, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Uploader == nil {
		return nil, errors.New("uploader is nil")
	}
	if config.PinGatewayHost == "" {
		return nil, errors.New("pin gateway host is empty")
	}

	mintGatewayHost := config.MintGatewayHost
	if mintGatewayHost == "" {
		mintGatewayHost = DefaultMintGatewayHost
	}

	minter, err := mint.NewMinter(mint.MinterOptions{
		Provider:    config.WalletProvider,
		Contract:    config.Contract,
		Backend:     config.Backend,
		GatewayHost: mintGatewayHost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minter: %w", err)
	}

	httpClient := config.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	controller := &Controller{
		uploader:   config.Uploader,
		minter:     minter,
		httpClient: httpClient,

		pinGatewayHost: config.PinGatewayHost,
		apiIpPort:      config.ApiIpPort,

		tasks: pond.NewPool(1),

		previewCache: expirable.NewLRU[string, string](previewCacheSize, nil, previewCacheTTL),
	}

	controller.apiRouter = controller.generateRouter()

	return controller, nil
}

func NewControllerConfigFromSetupResult(ctx context.Context, setupResult *setup.SetupResult) (*ControllerConfig, error) {
	if setupResult == nil {
		return nil, errors.New("setup result is nil")
	}

	ethClient, err := ethclient.Dial(setupResult.EthereumRpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum client: %w", err)
	}

	contract, err := arttoken.NewArtToken(setupResult.ContractAddress, ethClient)
	if err != nil {
		return nil, fmt.Errorf("failed to bind token contract: %w", err)
	}

	var walletProvider wallet.Provider
	if len(setupResult.AccountPrivateKeySeed) > 0 {
		chainID, err := ethClient.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}

		w, err := wallet.NewWallet(setupResult.AccountPrivateKeySeed, chainID)
		if err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
		walletProvider = w
	}

	var uploader filestorage.Uploader
	if setupResult.PinataJwtKey != "" {
		uploader = filestorage.NewPinataUploader(setupResult.PinataJwtKey, setupResult.PinGatewayHost)
	} else {
		uploader = filestorage.NewGatewayUploader(setupResult.UploadServiceUrl, http.DefaultClient)
	}

	return &ControllerConfig{
		Uploader:       uploader,
		WalletProvider: walletProvider,
		Contract:       contract,
		Backend:        ethClient,
		HttpClient:     http.DefaultClient,

		PinGatewayHost: setupResult.PinGatewayHost,
		ApiIpPort:      setupResult.ApiIpPort,
	}, nil
}

// runStage gates re-entry with the stage's busy flag and hands the body to
// the single-worker pool.
func (c *Controller) runStage(target Stage, fn func() error) error {
	flag := &c.busy[target]
	if !flag.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", errs.ErrStageBusy, target)
	}
	defer flag.Store(false)

	return c.tasks.SubmitErr(fn).Wait()
}

// SelectFile stores the blob for this run. Once the pipeline has advanced
// past file selection the run is committed to that file; start a new run to
// change it.
func (c *Controller) SelectFile(filename string, content []byte) error {
	return c.runStage(StageFileSelected, func() error {
		if filename == "" || len(content) == 0 {
			return fmt.Errorf("%w: no file selected", errs.ErrValidation)
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.run.stage > StageFileSelected {
			return fmt.Errorf("%w: run already in progress, reset to start over", errs.ErrValidation)
		}

		c.run.fileName = filename
		c.run.fileContent = content
		c.run.stage = StageFileSelected

		return nil
	})
}

// UploadImage submits the selected file to the upload service and commits
// the returned address. On failure the run stays at file selection and the
// upload can be retried.
func (c *Controller) UploadImage(ctx context.Context) (string, error) {
	var address string

	err := c.runStage(StageImageUploaded, func() error {
		c.mu.Lock()
		stage, filename, content := c.run.stage, c.run.fileName, c.run.fileContent
		c.mu.Unlock()

		if stage != StageFileSelected {
			return fmt.Errorf("%w: select a file first", errs.ErrValidation)
		}

		uploaded, err := c.uploader.UploadFile(ctx, filename, content)
		if err != nil {
			return err
		}

		c.mu.Lock()
		c.run.imageAddress = uploaded
		c.run.stage = StageImageUploaded
		c.mu.Unlock()

		address = uploaded
		return nil
	})

	return address, err
}

// BuildMetadata constructs the metadata document from the uploaded image
// address and the user-entered fields.
func (c *Controller) BuildMetadata(name, description string) (*nft.AssetMetadata, error) {
	var built nft.AssetMetadata

	err := c.runStage(StageMetadataReady, func() error {
		c.mu.Lock()
		stage, imageAddress := c.run.stage, c.run.imageAddress
		c.mu.Unlock()

		if stage != StageImageUploaded {
			return fmt.Errorf("%w: upload the image first", errs.ErrValidation)
		}

		metadata, err := nft.BuildMetadata(imageAddress, name, description, c.pinGatewayHost)
		if err != nil {
			return err
		}

		c.mu.Lock()
		c.run.metadata = metadata
		c.run.hasMetadata = true
		c.run.stage = StageMetadataReady
		c.mu.Unlock()

		built = metadata
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &built, nil
}

// UploadMetadata uploads the built document as metadata.json and commits the
// returned address.
func (c *Controller) UploadMetadata(ctx context.Context) (string, error) {
	var address string

	err := c.runStage(StageMetadataUploaded, func() error {
		c.mu.Lock()
		stage, metadata := c.run.stage, c.run.metadata
		c.mu.Unlock()

		if stage != StageMetadataReady {
			return fmt.Errorf("%w: build the metadata first", errs.ErrValidation)
		}

		uploaded, err := c.uploader.UploadJson(ctx, "metadata.json", metadata)
		if err != nil {
			return err
		}

		c.mu.Lock()
		c.run.metadataAddress = uploaded
		c.run.stage = StageMetadataUploaded
		c.mu.Unlock()

		address = uploaded
		return nil
	})

	return address, err
}

// Mint submits the mint transaction and awaits inclusion. The wallet probe
// precedes the minting flip so an absent provider leaves the mint status
// idle. Minting a second time would create a second token; the stage gate
// plus the forward-only run state prevent that within one run.
func (c *Controller) Mint(ctx context.Context) (*mint.Transaction, error) {
	var confirmed *mint.Transaction

	err := c.runStage(StageMinted, func() error {
		c.mu.Lock()
		stage, metadataAddress := c.run.stage, c.run.metadataAddress
		c.mu.Unlock()

		if stage != StageMetadataUploaded {
			return fmt.Errorf("%w: upload the metadata first", errs.ErrValidation)
		}

		if !c.minter.WalletAvailable() {
			return errs.ErrWalletUnavailable
		}

		c.mu.Lock()
		c.run.stage = StageMinting
		c.run.mintStatus = MintMinting
		c.mu.Unlock()

		tx, err := c.minter.Mint(ctx, metadataAddress)
		if err != nil {
			c.mu.Lock()
			c.run.stage = StageMetadataUploaded
			c.run.mintStatus = MintIdle
			c.mu.Unlock()
			return err
		}

		c.mu.Lock()
		c.run.mintTx = tx
		c.run.mintStatus = MintConfirmed
		c.run.stage = StageMinted
		c.mu.Unlock()

		confirmed = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	return confirmed, nil
}

// Reset discards the current run and returns the pipeline to idle.
func (c *Controller) Reset() error {
	return c.runStage(StageIdle, func() error {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.run = run{}
		return nil
	})
}

// State returns a snapshot for the presentation layer. Later mutations never
// touch a returned snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Stage:           c.run.stage,
		FileName:        c.run.fileName,
		FileSize:        len(c.run.fileContent),
		ImageAddress:    c.run.imageAddress,
		MetadataAddress: c.run.metadataAddress,
		MintStatus:      c.run.mintStatus,
	}

	if c.run.hasMetadata {
		metadata := c.run.metadata
		state.Metadata = &metadata
	}
	if c.run.mintTx != nil {
		tx := *c.run.mintTx
		state.Mint = &tx
	}

	return state
}
