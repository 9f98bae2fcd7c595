package errors

import "errors"

// Target errors indicate problems reaching or mutating the remote n8n instance.
var (
	// ErrTargetNotReady indicates the target failed its health check within the deadline.
	ErrTargetNotReady = errors.New("target instance not ready within deadline")

	// ErrRemoteUnavailable indicates the remote catalog or a record could not be read.
	ErrRemoteUnavailable = errors.New("remote instance unavailable")

	// ErrRecordsFailed indicates one or more record create/update calls failed.
	ErrRecordsFailed = errors.New("one or more records failed to sync")
)

// Input errors indicate issues with local files or the sync plan.
var (
	// ErrMalformedRecord indicates a local file does not decode to the expected shape.
	ErrMalformedRecord = errors.New("file does not decode to a record object or array of record objects")

	// ErrThresholdNotMet indicates the import plan is smaller than a configured minimum.
	ErrThresholdNotMet = errors.New("record count below configured minimum")

	// ErrDataRootNotFound indicates the data root directory does not exist.
	ErrDataRootNotFound = errors.New("data root directory not found")
)

// Configuration errors indicate missing or invalid environment-provided settings.
var (
	// ErrMissingBaseURL indicates no target base URL was supplied.
	ErrMissingBaseURL = errors.New("target base URL must be set")

	// ErrMissingCredentials indicates basic auth credentials were not supplied.
	ErrMissingCredentials = errors.New("basic auth user and password must be set")

	// ErrMissingEncryptionKey indicates the credential encryption key was not supplied.
	ErrMissingEncryptionKey = errors.New("encryption key must be set")

	// ErrMissingAPIKey indicates the public API key was not supplied.
	ErrMissingAPIKey = errors.New("API key must be set")
)

// Cryptographic errors indicate failures while decrypting credential blobs.
var (
	// ErrInvalidBlob indicates a credential data blob is not in the expected OpenSSL format.
	ErrInvalidBlob = errors.New("credential blob is not in OpenSSL salted format")

	// ErrDecryptFailed indicates a credential data blob could not be decrypted.
	ErrDecryptFailed = errors.New("failed to decrypt credential data")
)
