package feed

import "encoding/json"

// Event is the decoded form of an inbound feed message. It is a closed union:
// the only implementations are NewListing and Transaction.
type Event interface {
	isEvent()
}

// NewListing announces that a token has just been listed and is now eligible
// for transaction monitoring.
type NewListing struct {
	TokenAddress string // Address of the newly listed token
}

// Transaction carries a single swap transaction involving a watched token.
//
// Payload holds the full original transaction object exactly as it arrived on
// the wire. The feed does not publish a fixed schema for it, so it is passed
// through opaque and never reshaped.
type Transaction struct {
	ToAddress     string          // Address of the token on the receiving side of the swap
	BlockUnixTime int64           // Block timestamp in seconds since the Unix epoch (UTC)
	Payload       json.RawMessage // Original transaction object, byte-for-byte
}

func (NewListing) isEvent()  {}
func (Transaction) isEvent() {}
