package txarchive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gabapcia/tokenwatch/internal/feed"
)

// timestampLayout is the canonical second-precision UTC layout used in
// storage keys, e.g. "2024-03-20_23-10-38".
const timestampLayout = "2006-01-02_15-04-05"

// storageKeyFormat is the object key template: transactions/<token>/<ts>.json
const storageKeyFormat = "transactions/%s/%s.json"

// Record is the canonical, storable form of a decoded transaction: the target
// token address, the block timestamp formatted for the storage key, and the
// untouched original payload.
//
// A Record has no identity beyond its storage key. Two transactions for the
// same token in the same second derive the same key, so the later write
// replaces the earlier one.
type Record struct {
	TokenAddress string          // Target token address the transaction was archived under
	Timestamp    string          // Block time formatted as YYYY-MM-DD_HH-MM-SS (UTC)
	Payload      json.RawMessage // Original transaction payload, byte-for-byte
}

// materialize deterministically converts a decoded transaction event into its
// canonical Record. It is a pure function: the block Unix time is interpreted
// as UTC seconds with no timezone handling, and the payload passes through
// unmodified.
func materialize(tx feed.Transaction) Record {
	return Record{
		TokenAddress: tx.ToAddress,
		Timestamp:    time.Unix(tx.BlockUnixTime, 0).UTC().Format(timestampLayout),
		Payload:      tx.Payload,
	}
}

// StorageKey derives the deterministic object key for the record. Identical
// (token, timestamp) pairs always map to the identical key, which makes
// re-archiving idempotent rather than duplicative.
func (r Record) StorageKey() string {
	return fmt.Sprintf(storageKeyFormat, r.TokenAddress, r.Timestamp)
}

// prettyPayload renders the payload as indented, newline-terminated JSON,
// which is the exact content written to the blob store.
func (r Record) prettyPayload() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Payload, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
