// Package errs defines the error taxonomy shared by the pipeline stages.
//
// Stage implementations wrap these sentinels with fmt.Errorf("%w: ...") so
// callers can classify failures with errors.Is while still surfacing the
// underlying diagnostic.
package errs

import "errors"

var (
	// ErrValidation reports a stage precondition that was not met. It is a
	// local user or programmer error and is never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrStageBusy reports that an identical stage transition is already in
	// flight for this pipeline run.
	ErrStageBusy = errors.New("stage already in flight")

	// ErrUpload reports a failed call to the content-upload service.
	ErrUpload = errors.New("upload failed")

	// ErrWalletUnavailable reports that no wallet provider exists in the
	// execution environment.
	ErrWalletUnavailable = errors.New("wallet provider unavailable")

	// ErrAuthorization reports that the wallet declined to authorize an
	// account or could not produce a signer.
	ErrAuthorization = errors.New("wallet authorization failed")

	// ErrMintSubmission reports that the mint transaction could not be
	// submitted to the chain.
	ErrMintSubmission = errors.New("mint submission failed")

	// ErrMintConfirmation reports that a submitted mint transaction was
	// dropped or reverted before inclusion was confirmed.
	ErrMintConfirmation = errors.New("mint confirmation failed")
)
