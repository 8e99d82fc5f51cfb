// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.annotate.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - StateStore: TOML-based workspace state (state.toml) with a change watcher
package file
