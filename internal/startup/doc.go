// Package startup handles configuration loading and the structured startup
// and shutdown logging sequence.
//
// Configuration comes from environment variables (optionally seeded from a
// .env file), each logged with its effective value under a section banner so
// a support bundle shows exactly how the process was configured. Invalid
// values fall back to defaults with a warning rather than refusing to start.
package startup
