package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFactList_BareList(t *testing.T) {
	data := []byte(`[
		{"id": "f-1", "fact": "Alice joined the team", "timestamp": "2026-03-01", "category": "milestone"},
		{"fact": "Alice likes Go"},
		"not a record",
		{"timestamp": "2026-03-02"}
	]`)

	list, err := DecodeFactList(data)
	require.NoError(t, err)

	assert.Equal(t, FactListBare, list.Shape)
	require.Len(t, list.Records, 3, "non-object records are dropped")

	facts := list.Facts()
	require.Len(t, facts, 2, "records without a fact are excluded")
	assert.Equal(t, "f-1", facts[0].ID)
	assert.Equal(t, "milestone", facts[0].Category)
	assert.Equal(t, "2026-03-01", facts[0].Timestamp.Text)
	assert.Equal(t, "", facts[1].ID)
	assert.True(t, facts[1].Timestamp.IsZero())
}

func TestDecodeFactList_WrappedObject(t *testing.T) {
	list, err := DecodeFactList([]byte(`{"items": [{"fact": "Shipped v2", "timestamp": 1767225600}]}`))
	require.NoError(t, err)

	assert.Equal(t, FactListWrapped, list.Shape)
	require.Len(t, list.Records, 1)
	assert.True(t, list.Records[0].Timestamp.IsEpoch)
	assert.Equal(t, float64(1767225600), list.Records[0].Timestamp.Epoch)
}

func TestDecodeFactList_ObjectWithoutItems(t *testing.T) {
	list, err := DecodeFactList([]byte(`{"entity": "Alice"}`))
	require.NoError(t, err)
	assert.Equal(t, FactListWrapped, list.Shape)
	assert.Empty(t, list.Records)
}

func TestDecodeFactList_Rejects(t *testing.T) {
	for _, input := range []string{"", "42", `"text"`, `[{"fact": }`} {
		_, err := DecodeFactList([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestDecodeFactList_NumericID(t *testing.T) {
	list, err := DecodeFactList([]byte(`[{"id": 42, "fact": "numeric id"}]`))
	require.NoError(t, err)
	require.Len(t, list.Records, 1)
	assert.Equal(t, "42", list.Records[0].ID)
}

func TestFactTime_DayAndInstant(t *testing.T) {
	utc := time.UTC

	// Day strings pass through unchanged
	day := FactTime{Text: "2026-03-01"}
	assert.Equal(t, "2026-03-01", day.Day(utc))
	ts, ok := day.Instant(utc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, utc), ts)

	// Date-times collapse to their day
	assert.Equal(t, "2026-03-01", FactTime{Text: "2026-03-01T18:30:00"}.Day(utc))

	// Epoch seconds and milliseconds resolve to the same instant
	secs := FactTime{Epoch: 1767225600, IsEpoch: true}
	millis := FactTime{Epoch: 1767225600000, IsEpoch: true}
	assert.Equal(t, "2026-01-01", secs.Day(utc))
	assert.Equal(t, "2026-01-01", millis.Day(utc))

	// Unparseable text is kept verbatim and has no instant
	odd := FactTime{Text: "last tuesday"}
	assert.Equal(t, "last tuesday", odd.Day(utc))
	_, ok = odd.Instant(utc)
	assert.False(t, ok)
}

func TestParseDateTime(t *testing.T) {
	utc := time.UTC

	ts, err := ParseDateTime("2026-01-31", utc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, utc), ts)

	ts, err = ParseDateTime("2026-01-31T06:15", utc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 6, 15, 0, 0, utc), ts)

	_, err = ParseDateTime("31/01/2026", utc)
	assert.Error(t, err)
}
