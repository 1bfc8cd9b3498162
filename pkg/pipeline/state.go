package pipeline

import (
	"encoding/json"

	"github.com/atelierlabs/mintline/pkg/pipeline/mint"
	"github.com/atelierlabs/mintline/pkg/pipeline/nft"
)

// Stage is the pipeline's single tagged state value. A run only moves
// forward; a failed transition leaves the stage where it was, so the same
// transition can be retried while its precondition still holds.
type Stage int

const (
	StageIdle Stage = iota
	StageFileSelected
	StageImageUploaded
	StageMetadataReady
	StageMetadataUploaded
	StageMinting
	StageMinted
)

const stageCount = int(StageMinted) + 1

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageFileSelected:
		return "fileSelected"
	case StageImageUploaded:
		return "imageUploaded"
	case StageMetadataReady:
		return "metadataReady"
	case StageMetadataUploaded:
		return "metadataUploaded"
	case StageMinting:
		return "minting"
	case StageMinted:
		return "minted"
	default:
		return "unknown"
	}
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type MintStatus int

const (
	MintIdle MintStatus = iota
	MintMinting
	MintConfirmed
)

func (s MintStatus) String() string {
	switch s {
	case MintIdle:
		return "idle"
	case MintMinting:
		return "minting"
	case MintConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

func (s MintStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// State is a snapshot of one pipeline run, handed to the presentation layer.
// Committed fields are never rolled back by a later failure.
type State struct {
	Stage           Stage              `json:"stage"`
	FileName        string             `json:"fileName,omitempty"`
	FileSize        int                `json:"fileSize,omitempty"`
	ImageAddress    string             `json:"imageAddress,omitempty"`
	Metadata        *nft.AssetMetadata `json:"metadata,omitempty"`
	MetadataAddress string             `json:"metadataAddress,omitempty"`
	MintStatus      MintStatus         `json:"mintStatus"`
	Mint            *mint.Transaction  `json:"mint,omitempty"`
}
