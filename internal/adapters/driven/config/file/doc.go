// Package file provides file-based adapters for configuration and prompts.
//
// Adapters:
//   - Load/Parse: TOML configuration at ~/.marketbrief/config.toml
//   - Watcher: fsnotify-driven reload of the config file
//   - PromptStore: user-editable evaluator prompts
package file
