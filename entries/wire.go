// Package entries is the aggregator's C6: the six entry builders that
// orchestrate history loading, pre-image lookup, SMT mutation, proof
// compilation, and entry serialization described in spec.md §4.6.
package entries

import (
	"encoding/binary"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
)

// encodeEntry assembles the wire blob returned to callers: a
// length-prefixed vector of keys, a length-prefixed vector of old
// values, a length-prefixed vector of new values, the compiled proof as
// length-prefixed bytes, and the action label as length-prefixed bytes.
// This is a self-consistent encoding, not the on-chain molecule layout —
// see DESIGN.md for why no molecule codegen is available in this build.
func encodeEntry(keys, oldValues, newValues []smt.H256, proof []byte, action string) []byte {
	out := make([]byte, 0, 4+len(keys)*96+4+len(proof)+4+len(action))
	out = appendH256Vec(out, keys)
	out = appendH256Vec(out, oldValues)
	out = appendH256Vec(out, newValues)
	out = appendLenPrefixed(out, proof)
	out = appendLenPrefixed(out, []byte(action))
	return out
}

func appendH256Vec(out []byte, vec []smt.H256) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(vec)))
	out = append(out, lenBuf[:]...)
	for _, h := range vec {
		out = append(out, h.Bytes()...)
	}
	return out
}

func appendLenPrefixed(out, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	return append(out, b...)
}

// Entry is a decoded wire blob, returned by decodeEntry for tests that
// check the serialization round-trips.
type Entry struct {
	Keys      []smt.H256
	OldValues []smt.H256
	NewValues []smt.H256
	Proof     []byte
	Action    string
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	var err error
	e.Keys, data, err = readH256Vec(data)
	if err != nil {
		return Entry{}, err
	}
	e.OldValues, data, err = readH256Vec(data)
	if err != nil {
		return Entry{}, err
	}
	e.NewValues, data, err = readH256Vec(data)
	if err != nil {
		return Entry{}, err
	}
	var proof, action []byte
	proof, data, err = readLenPrefixed(data)
	if err != nil {
		return Entry{}, err
	}
	e.Proof = proof
	action, _, err = readLenPrefixed(data)
	if err != nil {
		return Entry{}, err
	}
	e.Action = string(action)
	return e, nil
}

func readH256Vec(data []byte) ([]smt.H256, []byte, error) {
	if len(data) < 4 {
		return nil, nil, apperr.Encoding("truncated entry: missing vector length")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	need := int(n) * 32
	if len(data) < need {
		return nil, nil, apperr.Encoding("truncated entry: short vector body")
	}
	vec := make([]smt.H256, n)
	for i := range vec {
		h, err := smt.FromBytes(data[i*32 : (i+1)*32])
		if err != nil {
			return nil, nil, apperr.Encoding(err.Error())
		}
		vec[i] = h
	}
	return vec, data[need:], nil
}

func readLenPrefixed(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, apperr.Encoding("truncated entry: missing length prefix")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if len(data) < int(n) {
		return nil, nil, apperr.Encoding("truncated entry: short body")
	}
	return data[:n], data[n:], nil
}
