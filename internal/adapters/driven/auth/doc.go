// Package auth provides bearer token providers for the remote store.
//
// Providers:
//   - StaticTokenProvider: a fixed token, or the ANNOTATE_TOKEN environment variable
//   - CredentialsTokenProvider: the session saved by "annotate auth login"
//   - ChainTokenProvider: the first provider that has a token
//   - NullTokenProvider: never authenticated
package auth
