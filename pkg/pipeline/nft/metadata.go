package nft

import (
	"fmt"
	"strings"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
)

// AssetMetadata is the token metadata document. It is built once per
// pipeline run and never mutated afterwards.
type AssetMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// BuildMetadata constructs the metadata document for an uploaded image. The
// image address is rewritten from the gateway delivery form into its
// content-addressing form. Pure: no I/O, no stored state.
func BuildMetadata(imageAddress, name, description, gatewayHost string) (AssetMetadata, error) {
	switch {
	case imageAddress == "":
		return AssetMetadata{}, fmt.Errorf("%w: image must be uploaded first", errs.ErrValidation)
	case name == "":
		return AssetMetadata{}, fmt.Errorf("%w: name must not be empty", errs.ErrValidation)
	case description == "":
		return AssetMetadata{}, fmt.Errorf("%w: description must not be empty", errs.ErrValidation)
	}

	return AssetMetadata{
		Name:        name,
		Description: description,
		Image:       RewriteGatewayURL(imageAddress, gatewayHost),
	}, nil
}

// RewriteGatewayURL rewrites https://<gatewayHost>/ipfs/<cid> into
// ipfs://<cid>. The host must match exactly; any other address is returned
// unchanged.
func RewriteGatewayURL(address, gatewayHost string) string {
	prefix := "https://" + gatewayHost + "/ipfs/"
	if !strings.HasPrefix(address, prefix) {
		return address
	}

	return "ipfs://" + strings.TrimPrefix(address, prefix)
}
