package filestorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zde37/pinata-go-sdk/pinata"

	"github.com/atelierlabs/mintline/pkg/pipeline/errs"
)

type PinataUploader struct {
	jwtKey      string
	gatewayHost string

	client *pinata.Client
}

// NewPinataUploader returns an Uploader that pins content through Pinata and
// reports addresses in the delivery form of the given gateway host.
func NewPinataUploader(jwtKey, gatewayHost string) *PinataUploader {
	return &PinataUploader{
		jwtKey:      jwtKey,
		gatewayHost: gatewayHost,
		client:      pinata.New(pinata.NewAuthWithJWT(jwtKey)),
	}
}

func (u *PinataUploader) UploadFile(ctx context.Context, filename string, content []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: no filename supplied", errs.ErrValidation)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: no file content supplied", errs.ErrValidation)
	}

	// The SDK pins from a path, so the blob goes through a scratch file.
	tmpFile, err := os.CreateTemp("", "mintline-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("%w: failed to stage file: %v", errs.ErrUpload, err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("%w: failed to stage file: %v", errs.ErrUpload, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to stage file: %v", errs.ErrUpload, err)
	}

	pinResponse, err := u.client.PinFile(tmpFile.Name(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to pin file: %v", errs.ErrUpload, err)
	}
	if pinResponse.IpfsHash == "" {
		return "", fmt.Errorf("%w: pin response carries no content id", errs.ErrUpload)
	}

	return u.gatewayAddress(pinResponse.IpfsHash), nil
}

func (u *PinataUploader) UploadJson(ctx context.Context, filename string, json interface{}) (string, error) {
	pinResponse, err := u.client.PinJSON(json, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to pin json: %v", errs.ErrUpload, err)
	}
	if pinResponse.IpfsHash == "" {
		return "", fmt.Errorf("%w: pin response carries no content id", errs.ErrUpload)
	}

	return u.gatewayAddress(pinResponse.IpfsHash), nil
}

func (u *PinataUploader) gatewayAddress(ipfsHash string) string {
	return "https://" + u.gatewayHost + "/ipfs/" + ipfsHash
}
