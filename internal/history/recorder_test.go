package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/pkg/llm"
)

func TestRecorder_RecordsEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.New(nil)
	defer bus.Close()
	store := NewFileStore(t.TempDir(), 0)

	r := NewRecorder(store, bus, nil)
	require.NoError(t, r.Start())

	result := compare.Result{
		Query:      "What is Go?",
		Provider:   catalog.OpenAI,
		ModelName:  "gpt-4",
		ModelType:  catalog.Instruct,
		Response:   "A language.",
		TokenUsage: compare.TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5},
	}
	require.NoError(t, bus.Publish(events.TopicResultCompleted, compare.ResultEvent{Event: events.NewEvent(), Result: result}))
	bus.WaitAsync()

	cmp := compare.Comparison{Query: "Compare me", Results: []*compare.Result{&result, &result}, Warnings: []string{"w"}}
	require.NoError(t, bus.Publish(events.TopicComparisonCompleted, compare.ComparisonEvent{Event: events.NewEvent(), Comparison: cmp}))
	bus.WaitAsync()

	ans := agent.Answer{Question: "What is shown?", Text: "A cat.", Mode: agent.ModeVision, Usage: llm.Usage{TotalTokens: 9}}
	require.NoError(t, bus.Publish(events.TopicAgentAnswered, agent.AnswerEvent{Event: events.NewEvent(), Answer: ans}))
	bus.WaitAsync()

	recs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	byKind := map[Kind]*Record{}
	for _, r := range recs {
		byKind[r.Kind] = r
	}
	require.Contains(t, byKind, KindQuery)
	assert.Equal(t, "What is Go?", byKind[KindQuery].Query)
	assert.Equal(t, 5, byKind[KindQuery].Results[0].TotalTokens)

	require.Contains(t, byKind, KindCompare)
	assert.Len(t, byKind[KindCompare].Results, 2)
	assert.Equal(t, []string{"w"}, byKind[KindCompare].Warnings)

	require.Contains(t, byKind, KindAgent)
	assert.Equal(t, "vision", byKind[KindAgent].Results[0].Model)
	assert.Equal(t, "A cat.", byKind[KindAgent].Results[0].Response)
}

func TestRecorder_Stop(t *testing.T) {
	bus := events.New(nil)
	defer bus.Close()
	store := NewFileStore(t.TempDir(), 0)

	r := NewRecorder(store, bus, nil)
	require.NoError(t, r.Start())
	require.NoError(t, r.Stop())

	require.NoError(t, bus.Publish(events.TopicResultCompleted, compare.ResultEvent{Result: compare.Result{Query: "q"}}))
	bus.WaitAsync()

	recs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFromAnswer_KeepsVisionError(t *testing.T) {
	a := &agent.Answer{Question: "q", Text: "t", Mode: agent.ModeText, FellBack: true,
		Err: assert.AnError, Elapsed: 1500 * time.Millisecond}
	rec := FromAnswer(a)
	assert.Equal(t, KindAgent, rec.Kind)
	assert.Equal(t, assert.AnError.Error(), rec.Results[0].Error)
	assert.InDelta(t, 1.5, rec.Results[0].ResponseTime, 1e-9)
	assert.NotEmpty(t, rec.ID)
}

func TestOpen_DefaultsToFileStore(t *testing.T) {
	s, err := Open(config.HistoryConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}
