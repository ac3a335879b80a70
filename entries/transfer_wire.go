package entries

import (
	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
)

// transferSection is one account's half of a Transfer/TransferUpdate
// entry: its own post-mutation root alongside the keys/values/proof that
// verify against it. Transfer is the one operation that touches two
// accounts in a single entry (spec.md §4.6), so unlike the other five
// builders its wire entry carries two independently-verifiable root
// sections rather than one implicit root.
type transferSection struct {
	root      smt.H256
	keys      []smt.H256
	oldValues []smt.H256
	newValues []smt.H256
	proof     []byte
}

func encodeTransferEntry(sender, recipient transferSection, action string) []byte {
	out := make([]byte, 0, 256)
	out = appendSection(out, sender)
	out = appendSection(out, recipient)
	out = appendLenPrefixed(out, []byte(action))
	return out
}

func appendSection(out []byte, s transferSection) []byte {
	out = append(out, s.root.Bytes()...)
	out = appendH256Vec(out, s.keys)
	out = appendH256Vec(out, s.oldValues)
	out = appendH256Vec(out, s.newValues)
	out = appendLenPrefixed(out, s.proof)
	return out
}

// TransferEntry is a decoded Transfer/TransferUpdate wire blob.
type TransferEntry struct {
	Sender    TransferSide
	Recipient TransferSide
	Action    string
}

// TransferSide is one account's decoded half of a TransferEntry.
type TransferSide struct {
	Root      smt.H256
	Keys      []smt.H256
	OldValues []smt.H256
	NewValues []smt.H256
	Proof     []byte
}

func decodeTransferEntry(data []byte) (TransferEntry, error) {
	sender, data, err := readSection(data)
	if err != nil {
		return TransferEntry{}, err
	}
	recipient, data, err := readSection(data)
	if err != nil {
		return TransferEntry{}, err
	}
	action, _, err := readLenPrefixed(data)
	if err != nil {
		return TransferEntry{}, err
	}
	return TransferEntry{Sender: sender, Recipient: recipient, Action: string(action)}, nil
}

func readSection(data []byte) (TransferSide, []byte, error) {
	if len(data) < 32 {
		return TransferSide{}, nil, apperr.Encoding("truncated transfer entry: missing root")
	}
	root, err := smt.FromBytes(data[:32])
	if err != nil {
		return TransferSide{}, nil, apperr.Encoding(err.Error())
	}
	data = data[32:]

	var side TransferSide
	side.Root = root
	side.Keys, data, err = readH256Vec(data)
	if err != nil {
		return TransferSide{}, nil, err
	}
	side.OldValues, data, err = readH256Vec(data)
	if err != nil {
		return TransferSide{}, nil, err
	}
	side.NewValues, data, err = readH256Vec(data)
	if err != nil {
		return TransferSide{}, nil, err
	}
	side.Proof, data, err = readLenPrefixed(data)
	if err != nil {
		return TransferSide{}, nil, err
	}
	return side, data, nil
}
