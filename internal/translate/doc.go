// Package translate provides quick word translation directly against an LLM
// provider, bypassing the backend job pipeline. It is used to prefill pack
// generation requests and for the translate command, where waiting for a
// full generation job would be overkill.
package translate
