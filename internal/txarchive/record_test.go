package txarchive

import (
	"encoding/json"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	t.Run("should format the block time as a UTC timestamp", func(t *testing.T) {
		record := materialize(feed.Transaction{
			ToAddress:     "TOKEN123",
			BlockUnixTime: 1710984638,
			Payload:       json.RawMessage(`{"amount":5}`),
		})

		assert.Equal(t, "TOKEN123", record.TokenAddress)
		assert.Equal(t, "2024-03-21_01-30-38", record.Timestamp)
		assert.Equal(t, json.RawMessage(`{"amount":5}`), record.Payload)
	})

	t.Run("should handle the epoch", func(t *testing.T) {
		record := materialize(feed.Transaction{ToAddress: "a", BlockUnixTime: 0})
		assert.Equal(t, "1970-01-01_00-00-00", record.Timestamp)
	})
}

func TestRecord_StorageKey(t *testing.T) {
	t.Run("should derive the deterministic object key", func(t *testing.T) {
		record := materialize(feed.Transaction{ToAddress: "TOKEN123", BlockUnixTime: 1700000000})
		assert.Equal(t, "transactions/TOKEN123/2023-11-14_22-13-20.json", record.StorageKey())
	})

	t.Run("should collide for same token and same second", func(t *testing.T) {
		first := materialize(feed.Transaction{
			ToAddress:     "TOKEN123",
			BlockUnixTime: 1700000000,
			Payload:       json.RawMessage(`{"amount":1}`),
		})
		second := materialize(feed.Transaction{
			ToAddress:     "TOKEN123",
			BlockUnixTime: 1700000000,
			Payload:       json.RawMessage(`{"amount":2}`),
		})

		assert.Equal(t, first.StorageKey(), second.StorageKey())
	})
}

func TestRecord_PrettyPayload(t *testing.T) {
	t.Run("should indent the payload and terminate it with a newline", func(t *testing.T) {
		record := Record{Payload: json.RawMessage(`{"amount":5,"to":{"address":"TOKEN123"}}`)}

		data, err := record.prettyPayload()
		require.NoError(t, err)

		expected := "{\n  \"amount\": 5,\n  \"to\": {\n    \"address\": \"TOKEN123\"\n  }\n}\n"
		assert.Equal(t, expected, string(data))
	})

	t.Run("should fail on an invalid payload", func(t *testing.T) {
		record := Record{Payload: json.RawMessage(`{"broken":`)}

		_, err := record.prettyPayload()
		require.Error(t, err)
	})
}
