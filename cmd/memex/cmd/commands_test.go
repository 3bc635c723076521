package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/search"
)

func searchJSON(t *testing.T, ws string, args ...string) []search.Result {
	t.Helper()
	out, err := run(t, ws, append([]string{"search", "-f", "json"}, args...)...)
	require.NoError(t, err)
	var results []search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func TestIndexCmd_BuildsArtifact(t *testing.T) {
	// Given: a populated workspace
	ws := newWorkspace(t)

	// When: indexing
	out, err := run(t, ws, "index")

	// Then: the artifact is written and the report names it
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(ws, "tools", "index.gob"))
	assert.Contains(t, out, "Indexed")
	assert.Contains(t, out, "Vocabulary size")
}

func TestSearchCmd_BuildsIndexOnFirstUse(t *testing.T) {
	ws := newWorkspace(t)

	results := searchJSON(t, ws, "ingestion", "service")

	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "ingestion")
	assert.FileExists(t, filepath.Join(ws, "tools", "index.gob"))
}

func TestSearchCmd_LimitAndLayer(t *testing.T) {
	ws := newWorkspace(t)

	limited := searchJSON(t, ws, "ingestion", "-n", "1")
	daily := searchJSON(t, ws, "ingestion", "--layer", "daily")

	assert.Len(t, limited, 1)
	require.NotEmpty(t, daily)
	for _, r := range daily {
		assert.Equal(t, "daily", string(r.Metadata.Layer))
	}
}

func TestSearchCmd_NoMatchesIsEmptyJSONArray(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, ws, "search", "ingestion", "--entity", "Nobody", "-f", "json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestSearchCmd_FullFormat(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, ws, "search", "ramen")

	require.NoError(t, err)
	assert.Contains(t, out, "relevant memor")
	assert.Contains(t, out, "Cite by ID: mem-")
}

func TestSearchCmd_InvalidInput(t *testing.T) {
	ws := newWorkspace(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"blank query", []string{"search", "  "}, mxerrors.ErrCodeQueryEmpty},
		{"unknown layer", []string{"search", "x", "--layer", "nope"}, mxerrors.ErrCodeInvalidInput},
		{"unknown format", []string{"search", "x", "-f", "xml"}, mxerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, ws, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, mxerrors.GetCode(err))
		})
	}
}

func TestGetCmd_AcceptsCitationPrefixAndCommaList(t *testing.T) {
	// Given: ids from a search
	ws := newWorkspace(t)
	results := searchJSON(t, ws, "ingestion")
	require.GreaterOrEqual(t, len(results), 2)
	first, second := results[0].ID, results[1].ID

	// When: fetching one by citation form and one via --ids
	out, err := run(t, ws, "get", "mem-"+first, "--ids", second+",unknown", "-f", "json")

	// Then: both are returned and the unknown id is skipped
	require.NoError(t, err)
	var got []search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	ids := []string{}
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestGetCmd_RequiresIDs(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, ws, "get", " , ")

	require.Error(t, err)
	assert.Equal(t, mxerrors.ErrCodeInvalidInput, mxerrors.GetCode(err))
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitIDs([]string{"a, b", "", "c,"}))
	assert.Nil(t, splitIDs([]string{" ", ","}))
}

func TestTimelineCmd_DateAnchor(t *testing.T) {
	// Given: daily notes around 2026-01-30
	ws := newWorkspace(t)

	// When: asking for a timeline on that day
	out, err := run(t, ws, "timeline", "--date", "2026-01-30", "--json")

	// Then: that day's headlines are events in the window
	require.NoError(t, err)
	var res struct {
		Window struct {
			HoursBefore int `json:"hours_before"`
			HoursAfter  int `json:"hours_after"`
		} `json:"time_window"`
		Events []struct {
			Date string `json:"date"`
			Text string `json:"event"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 24, res.Window.HoursBefore)
	assert.Equal(t, 24, res.Window.HoursAfter)

	var texts []string
	for _, ev := range res.Events {
		texts = append(texts, ev.Text)
	}
	assert.Contains(t, texts, "Discussed deployment plan")
}

func TestTimelineCmd_Validation(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, ws, "timeline")
	require.Error(t, err)
	assert.Equal(t, mxerrors.ErrCodeInvalidInput, mxerrors.GetCode(err))

	_, err = run(t, ws, "timeline", "--date", "2026-01-30", "--before", "-1")
	require.Error(t, err)
	assert.Equal(t, mxerrors.ErrCodeInvalidInput, mxerrors.GetCode(err))
}

func TestStatsCmd_JSON(t *testing.T) {
	// Given: an indexed workspace with one recorded search
	ws := newWorkspace(t)
	_, err := run(t, ws, "index")
	require.NoError(t, err)
	_ = searchJSON(t, ws, "ingestion")

	// When
	out, err := run(t, ws, "stats", "--json")

	// Then: entry counts and the query are reported
	require.NoError(t, err)
	var report struct {
		Index struct {
			Entries int `json:"entries"`
		} `json:"index"`
		Telemetry *struct {
			TotalQueries int64 `json:"total_queries"`
		} `json:"telemetry"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Positive(t, report.Index.Entries)
	require.NotNil(t, report.Telemetry)
	assert.Equal(t, int64(1), report.Telemetry.TotalQueries)
}

func TestStatsCmd_TelemetryDisabled(t *testing.T) {
	ws := newWorkspace(t)
	t.Setenv("MEMEX_TELEMETRY", "false")

	out, err := run(t, ws, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Entries")
	assert.NotContains(t, out, "Queries")
}
