// Package cli builds the lexicall command tree and loads configuration from
// flags, a .lexicall.yaml config file and LEXICALL_* environment variables.
package cli
