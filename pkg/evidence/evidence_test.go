package evidence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsInOrder(t *testing.T) {
	c := NewCollector("abc123")
	c.Record(KindLineCreated, "47562-1", "47562", "materialized", nil)
	c.Record(KindSummary, "", "", "done", map[string]string{"modifiers_assigned": "0"})

	records := c.Records()
	require.Len(t, records, 2)
	assert.Equal(t, KindLineCreated, records[0].Kind)
	assert.Equal(t, "47562-1", records[0].LineID)
	assert.Equal(t, KindSummary, records[1].Kind)
	assert.Equal(t, "0", records[1].Details["modifiers_assigned"])
}

func TestCollectorRunMetadata(t *testing.T) {
	c := NewCollector("inputhash")
	c.SetLineCount(4)

	run := c.Run()
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "inputhash", run.InputHash)
	assert.Equal(t, 4, run.LineCount)
	assert.False(t, run.Timestamp.IsZero())
}

func TestRecordCallTruncatesLargeBodies(t *testing.T) {
	c := NewCollector("h")
	large := strings.Repeat("x", truncateLimit+100)
	c.RecordCall(CallRecord{Caller: "compliance-resolver", Prompt: large, Output: "short"})

	calls := c.Calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Prompt, truncateLimit)
	assert.Equal(t, HashString(large), calls[0].PromptHash)
	assert.Equal(t, "short", calls[0].Output)
	assert.Empty(t, calls[0].OutputHash)
}

func TestRecordCallKeepsSmallBodiesVerbatim(t *testing.T) {
	c := NewCollector("h")
	c.RecordCall(CallRecord{Caller: "x", Prompt: "small prompt", Output: "small output"})

	calls := c.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "small prompt", calls[0].Prompt)
	assert.Empty(t, calls[0].PromptHash)
}

func TestHashStringStable(t *testing.T) {
	assert.Equal(t, HashString("claim"), HashString("claim"))
	assert.NotEqual(t, HashString("claim"), HashString("claims"))
	assert.Len(t, HashString("claim"), 64)
}

func TestWriterWritesBundle(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector("h")
	c.Record(KindSummary, "", "", "done", nil)
	c.RecordCall(CallRecord{Caller: "compliance-resolver", Backend: "mock", Model: "mock-1"})

	w, err := NewWriter(dir, c.Run().ID)
	require.NoError(t, err)
	require.NoError(t, w.WriteCollector(c))

	for _, name := range []string{"run.json", "audit.json", "calls.json"} {
		data, err := os.ReadFile(filepath.Join(w.RunDir(), name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestNewWriterRejectsMissingArgs(t *testing.T) {
	_, err := NewWriter("", "run")
	assert.Error(t, err)
	_, err = NewWriter(t.TempDir(), "")
	assert.Error(t, err)
}
