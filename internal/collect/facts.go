package collect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FactListShape identifies which of the accepted items.json layouts was decoded.
type FactListShape int

const (
	// FactListBare is a top-level JSON array of records.
	FactListBare FactListShape = iota
	// FactListWrapped is an object holding the records under "items".
	FactListWrapped
)

// String returns the shape name.
func (s FactListShape) String() string {
	if s == FactListWrapped {
		return "wrapped"
	}
	return "bare"
}

// FactList is a normalized knowledge-graph fact file.
// Records that are not JSON objects are dropped during decoding.
type FactList struct {
	Shape   FactListShape
	Records []FactRecord
}

// FactRecord is one record of a fact list. Every field is optional.
type FactRecord struct {
	ID        string
	Fact      string
	Timestamp FactTime
	Category  string
}

// FactTime is a fact timestamp, stored either as text or as a numeric epoch.
type FactTime struct {
	Text    string
	Epoch   float64
	IsEpoch bool
}

// IsZero reports whether no timestamp was supplied.
func (t FactTime) IsZero() bool {
	return !t.IsEpoch && t.Text == ""
}

// epochMillisThreshold separates second-based from millisecond-based epochs.
const epochMillisThreshold = 1e11

// Instant resolves the timestamp to a point in time.
// Text is accepted as YYYY-MM-DD (midnight in loc) or RFC 3339 style date-times.
func (t FactTime) Instant(loc *time.Location) (time.Time, bool) {
	if t.IsEpoch {
		secs := t.Epoch
		if math.Abs(secs) >= epochMillisThreshold {
			secs /= 1000
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).In(loc), true
	}
	if t.Text == "" {
		return time.Time{}, false
	}
	ts, err := ParseDateTime(t.Text, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Day returns the timestamp as a YYYY-MM-DD string in loc.
// Unparseable text is returned unchanged.
func (t FactTime) Day(loc *time.Location) string {
	if !t.IsEpoch {
		if ts, ok := t.Instant(loc); ok && len(t.Text) > len(DateLayout) {
			return ts.Format(DateLayout)
		}
		return t.Text
	}
	ts, _ := t.Instant(loc)
	return ts.Format(DateLayout)
}

// String returns the raw representation.
func (t FactTime) String() string {
	if t.IsEpoch {
		return strconv.FormatFloat(t.Epoch, 'f', -1, 64)
	}
	return t.Text
}

// DateLayout is the day-granularity date format used across memex.
const DateLayout = "2006-01-02"

// dateTimeLayouts are the accepted explicit date-time formats, tried in order.
var dateTimeLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime parses a day or date-time string. Values without a zone are in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)", s)
}

// rawFact holds a record before its loosely typed fields are normalized.
type rawFact struct {
	ID        json.RawMessage `json:"id"`
	Fact      json.RawMessage `json:"fact"`
	Timestamp json.RawMessage `json:"timestamp"`
	Category  json.RawMessage `json:"category"`
}

// DecodeFactList decodes an items.json document in either accepted shape.
// An object without an "items" key decodes to an empty wrapped list.
func DecodeFactList(data []byte) (*FactList, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty fact list")
	}

	var (
		raws  []json.RawMessage
		shape FactListShape
	)
	switch trimmed[0] {
	case '[':
		shape = FactListBare
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode fact list: %w", err)
		}
	case '{':
		shape = FactListWrapped
		var wrapper struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode fact list: %w", err)
		}
		raws = wrapper.Items
	default:
		return nil, fmt.Errorf("unsupported fact list: expected a JSON array or object")
	}

	list := &FactList{Shape: shape, Records: make([]FactRecord, 0, len(raws))}
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var rf rawFact
		if err := json.Unmarshal(raw, &rf); err != nil {
			continue
		}
		list.Records = append(list.Records, FactRecord{
			ID:        scalarString(rf.ID),
			Fact:      textOnly(rf.Fact),
			Timestamp: decodeFactTime(rf.Timestamp),
			Category:  textOnly(rf.Category),
		})
	}
	return list, nil
}

// Facts returns the records carrying a non-empty fact.
func (l *FactList) Facts() []FactRecord {
	out := make([]FactRecord, 0, len(l.Records))
	for _, r := range l.Records {
		if r.Fact != "" {
			out = append(out, r)
		}
	}
	return out
}

// textOnly returns the value when it is a JSON string, otherwise "".
func textOnly(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	if s := textOnly(raw); s != "" {
		return s
	}
	var n json.Number
	if len(raw) > 0 && json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func decodeFactTime(raw json.RawMessage) FactTime {
	if s := textOnly(raw); s != "" {
		return FactTime{Text: s}
	}
	var f float64
	if len(raw) > 0 && json.Unmarshal(raw, &f) == nil {
		return FactTime{Epoch: f, IsEpoch: true}
	}
	return FactTime{}
}
