// Package feed defines the wire vocabulary of the Birdeye websocket feed: the
// inbound message kinds, their decoded event forms, and the outbound
// subscription control messages.
//
// The feed is forward-compatible by design: messages of a kind this package
// does not recognize decode to ErrUnknownMessageKind so callers can skip them
// instead of failing, since the provider may introduce new kinds at any time.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message kind discriminators used by the feed.
const (
	messageKindNewListing   = "TOKEN_NEW_LISTING_DATA"
	messageKindTransactions = "TXS_DATA"
)

var (
	// ErrMalformedMessage indicates the raw message could not be parsed as a
	// structured feed envelope at all.
	ErrMalformedMessage = errors.New("malformed feed message")

	// ErrUnknownMessageKind indicates a well-formed envelope whose kind this
	// package does not handle. Callers should treat it as skippable.
	ErrUnknownMessageKind = errors.New("unknown feed message kind")

	// ErrInvalidListing indicates a new-listing message without a usable
	// token address.
	ErrInvalidListing = errors.New("invalid new listing message")

	// ErrInvalidTransaction indicates a transaction message missing the
	// target token address or a valid block timestamp.
	ErrInvalidTransaction = errors.New("invalid transaction message")
)

// envelope is the outer shape shared by every inbound feed message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a raw inbound feed message and classifies it by its type
// discriminator.
//
// Returns:
//   - A NewListing or Transaction event on success.
//   - ErrMalformedMessage if the message is not a structured envelope.
//   - ErrUnknownMessageKind for kinds this package does not recognize.
//   - ErrInvalidListing or ErrInvalidTransaction when a recognized kind is
//     missing required fields.
//
// All returned errors are recoverable: a single bad message must never
// terminate the stream, so callers log and move on.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case messageKindNewListing:
		return decodeNewListing(env.Data)
	case messageKindTransactions:
		return decodeTransaction(env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageKind, env.Type)
	}
}

// decodeNewListing extracts the token address from a new-listing payload.
func decodeNewListing(data json.RawMessage) (NewListing, error) {
	var listing struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return NewListing{}, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}

	if listing.Address == "" {
		return NewListing{}, fmt.Errorf("%w: missing token address", ErrInvalidListing)
	}

	return NewListing{TokenAddress: listing.Address}, nil
}

// decodeTransaction normalizes and validates a transaction payload.
//
// The feed is inconsistent about the payload encoding: data usually arrives
// as a JSON object, but is sometimes a JSON string that itself contains the
// encoded object. Both forms are accepted; anything else is rejected.
//
// The target token address is taken from the top-level "tokenAddress" field
// when present, falling back to the "to" participant's address.
func decodeTransaction(data json.RawMessage) (Transaction, error) {
	payload, err := normalizeTransactionPayload(data)
	if err != nil {
		return Transaction{}, err
	}

	var tx struct {
		TokenAddress string `json:"tokenAddress"`
		To           struct {
			Address string `json:"address"`
		} `json:"to"`
		BlockUnixTime *int64 `json:"blockUnixTime"`
	}
	if err := json.Unmarshal(payload, &tx); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	tokenAddress := tx.TokenAddress
	if tokenAddress == "" {
		tokenAddress = tx.To.Address
	}
	if tokenAddress == "" {
		return Transaction{}, fmt.Errorf("%w: missing target token address", ErrInvalidTransaction)
	}

	if tx.BlockUnixTime == nil {
		return Transaction{}, fmt.Errorf("%w: missing block timestamp", ErrInvalidTransaction)
	}

	return Transaction{
		ToAddress:     tokenAddress,
		BlockUnixTime: *tx.BlockUnixTime,
		Payload:       payload,
	}, nil
}

// normalizeTransactionPayload unwraps string-encoded transaction payloads and
// verifies the result is a JSON object.
func normalizeTransactionPayload(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidTransaction)
	}

	// String form: the object is JSON-encoded a second time.
	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
		}
		trimmed = bytes.TrimSpace([]byte(encoded))
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not an object", ErrInvalidTransaction)
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidTransaction)
	}

	return json.RawMessage(trimmed), nil
}
