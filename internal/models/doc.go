// Package models provides functionality for listing and categorizing the
// chat models available for translation and pack generation. It helps users
// discover which models their API key can use with the --model flag.
package models
