// Package provider defines the boundary between the generation core and
// external AI vendors. It holds the LLM and TTS provider contracts, the
// shared error taxonomy every vendor adapter must translate into, and the
// managers that turn an ordered provider list into a single reliable call
// with retry, fallback, per-attempt timeouts and usage accounting.
package provider
