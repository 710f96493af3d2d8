// Package ir provides a stable, deterministic intermediate representation
// (IR) summarizing one generation run, built from the Type Resolver's
// registry and the Signature Synthesizer's function list.
//
// pipeline.Generate returns it as Result.Design, a summary that does not
// expose the internal typesys/sig graphs. The hermeticity ledger, the
// pipeline's logging and the CLI do not read it.
package ir
