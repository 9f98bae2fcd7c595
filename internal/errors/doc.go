// Package errors provides typed error values for the n8nsync application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Target errors: Remote instance problems (ErrTargetNotReady, ErrRemoteUnavailable)
//   - Input errors: Local file or plan issues (ErrMalformedRecord, ErrThresholdNotMet)
//   - Configuration errors: Missing settings (ErrMissingBaseURL, ErrMissingCredentials)
//   - Crypto errors: Credential decryption failures (ErrDecryptFailed)
//
// # Usage
//
// Return errors from internal packages:
//
//	if resp.StatusCode != http.StatusOK {
//	    return fmt.Errorf("GET %s: status %d: %w", url, resp.StatusCode, errors.ErrRemoteUnavailable)
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := importer.Run(ctx, opts)
//	if errors.Is(err, syncerrors.ErrThresholdNotMet) {
//	    // Show user-friendly message; no mutations were performed.
//	}
package errors
