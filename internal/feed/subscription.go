package feed

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outbound control message kinds understood by the feed.
const (
	subscribeNewListingKind   = "SUBSCRIBE_TOKEN_NEW_LISTING"
	subscribeTransactionsKind = "SUBSCRIBE_TXS"
)

// MaxAddressesPerSubscription is the upper bound the feed enforces on the
// number of token addresses declared in a single transaction subscription.
const MaxAddressesPerSubscription = 100

// ErrSubscriptionTooLarge indicates a transaction subscription was requested
// for more addresses than the feed accepts in one control message.
var ErrSubscriptionTooLarge = errors.New("too many addresses for a single subscription")

// subscribeMessage is the envelope of every outbound control message.
type subscribeMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// transactionSubscription declares interest in swap transactions for a batch
// of token addresses.
type transactionSubscription struct {
	QueryType string   `json:"queryType"`
	Addresses []string `json:"addresses"`
}

// NewListingSubscription returns the control message declaring interest in
// new token listings. It is sent once per connection establishment.
func NewListingSubscription() []byte {
	msg, _ := json.Marshal(subscribeMessage{Type: subscribeNewListingKind})
	return msg
}

// TransactionSubscription builds the control message subscribing to swap
// transactions for the given batch of token addresses.
//
// The batch must hold between 1 and MaxAddressesPerSubscription addresses;
// chunking a larger watch set into conforming batches is the caller's job.
func TransactionSubscription(addresses []string) ([]byte, error) {
	if len(addresses) == 0 {
		return nil, errors.New("transaction subscription requires at least one address")
	}
	if len(addresses) > MaxAddressesPerSubscription {
		return nil, fmt.Errorf("%w: %d > %d", ErrSubscriptionTooLarge, len(addresses), MaxAddressesPerSubscription)
	}

	return json.Marshal(subscribeMessage{
		Type: subscribeTransactionsKind,
		Data: transactionSubscription{
			QueryType: "complex",
			Addresses: addresses,
		},
	})
}
