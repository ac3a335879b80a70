package smt

import "errors"

// ErrKeyMismatch is returned by Compile/Verify when the supplied key/value
// pairs don't match the keys the proof was generated for.
var ErrKeyMismatch = errors.New("smt: proof does not cover the supplied key")

// ErrProofMismatch is returned by Compile when the roots recomputed for the
// proof's keys disagree with one another — a corrupted proof or a
// caller-supplied value set that doesn't correspond to the tree state the
// proof was taken from. Verify reports a root mismatch as false, not as
// this error.
var ErrProofMismatch = errors.New("smt: compiled proof does not verify against the expected root")

// ErrCorruptProof is returned when compiled proof bytes can't be decoded.
var ErrCorruptProof = errors.New("smt: corrupt compiled proof bytes")
