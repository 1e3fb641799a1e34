// Package processor contains the core orchestration logic behind the CLI
// commands. It wires the API client, the job polling engine, the lookup
// cache, the pack loader and the notification hub together, and renders
// notification updates to the terminal.
package processor
