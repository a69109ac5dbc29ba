// Package config resolves the app data folders and loads HostConfig.
//
// Layers, lowest to highest precedence:
//
//  1. defaults registered for every key
//  2. config.yml in the app data folder (optional)
//  3. derived values such as data_protection_folder
//  4. environment variables named after the keys, upper-cased with "."
//     replaced by "_" (PORT, ENABLE_SSL, POSTGRES_HOST, LOGGING_LEVEL)
//
// A .env file in the app data folder is loaded into the environment first
// and never overrides variables that are already set. Unknown keys are
// ignored.
package config
