package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/homecare/pkg/retry"
)

// keywordEmbedder counts fixed vocabulary words, giving predictable scores.
type keywordEmbedder struct {
	vocab []string
	fail  int
	calls int
}

func (k *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	k.calls++
	if k.calls <= k.fail {
		return nil, errors.New("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(k.vocab))
		for j, w := range k.vocab {
			vec[j] = float32(strings.Count(strings.ToLower(text), w))
		}
		out[i] = vec
	}
	return out, nil
}

var fastPolicy = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

func buildIndex(t *testing.T, emb Embedder, cfg Config, texts ...string) *Index {
	t.Helper()
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{Text: text}
	}
	ix := NewIndex(emb, cfg).WithRetryPolicy(fastPolicy)
	require.NoError(t, ix.Build(context.Background(), chunks))
	return ix
}

func TestRetrieve_Threshold(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"diabetes", "wheelchair", "sleep"}}
	ix := buildIndex(t, emb, DefaultConfig(), "diabetes diet", "wheelchair exercise", "sleep well")

	res, err := ix.Retrieve(context.Background(), "diabetes", "")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "diabetes diet", res.Chunks[0].Text)
	assert.InDelta(t, 1.0, res.Chunks[0].Score, 1e-9)

	res, err = ix.Retrieve(context.Background(), "gardening", "")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Context())
}

func TestRetrieve_ScoreGap(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"diabetes", "wheelchair"}}

	ix := buildIndex(t, emb, DefaultConfig(), "diabetes", "diabetes wheelchair")
	res, err := ix.Retrieve(context.Background(), "diabetes wheelchair", "")
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1, "top chunk leads by more than the gap")
	assert.Equal(t, "diabetes wheelchair", res.Chunks[0].Text)

	ix = buildIndex(t, emb, DefaultConfig(), "diabetes diabetes wheelchair", "diabetes wheelchair")
	res, err = ix.Retrieve(context.Background(), "diabetes wheelchair", "")
	require.NoError(t, err)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "diabetes wheelchair", res.Chunks[0].Text)
	assert.Equal(t, "diabetes wheelchair\n\ndiabetes diabetes wheelchair", res.Context())
}

func TestRetrieve_TopK(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"sleep"}}
	ix := buildIndex(t, emb, Config{TopK: 2, Threshold: 0.5, ScoreGap: 1}, "sleep a", "sleep b", "sleep c")

	res, err := ix.Retrieve(context.Background(), "sleep", "")
	require.NoError(t, err)
	assert.Len(t, res.Chunks, 2)
}

func TestRetrieve_RetriesEmbedder(t *testing.T) {
	emb := &keywordEmbedder{vocab: []string{"sleep"}}
	ix := buildIndex(t, emb, DefaultConfig(), "sleep tips")

	emb.fail = emb.calls + 1
	res, err := ix.Retrieve(context.Background(), "sleep", "")
	require.NoError(t, err)
	assert.True(t, res.Found)

	emb.fail = emb.calls + 10
	_, err = ix.Retrieve(context.Background(), "sleep", "")
	assert.ErrorIs(t, err, retry.ErrUnavailable)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	ix := buildIndex(t, &keywordEmbedder{vocab: []string{"x"}}, DefaultConfig(), "x")
	res, err := ix.Retrieve(context.Background(), "   ", "diabetes")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestBuild_Empty(t *testing.T) {
	err := NewIndex(HashEmbedder{}, DefaultConfig()).Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		query, condition, want string
	}{
		{"diet tips", "", "diet tips"},
		{"exercise ideas", "uses a wheelchair", "exercise ideas wheelchair exercises wheelchair users seated exercises"},
		{"diet tips", "mild type 2 diabetes", "diet tips diabetes mild type 2 diabetes"},
		{"sleep", "wheelchair user, hypertension", "sleep wheelchair hypertension wheelchair user, hypertension"},
		{"sleep", "tired", "sleep tired"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnhanceQuery(tt.query, tt.condition))
	}
}

func TestDefaultKnowledge(t *testing.T) {
	docs, err := LoadKnowledgeFile("")
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	chunks := Chunks(docs)
	require.GreaterOrEqual(t, len(chunks), len(docs))

	ix := NewIndex(HashEmbedder{}, HashConfig())
	require.NoError(t, ix.Build(context.Background(), chunks))
	assert.Equal(t, len(chunks), ix.Len())

	tests := []struct {
		query, condition, want string
	}{
		{"exercise", "wheelchair user", "wheelchair-exercise"},
		{"what exercises can I do", "wheelchair user", "wheelchair-exercise"},
		{"dust mite allergy", "", "dust-mite-allergy"},
		{"blood sugar control tips", "mild type 2 diabetes", "diabetes-exercise"},
		{"how can I sleep better", "", "sleep-hygiene"},
		{"how much water should I drink", "", "hydration"},
		{"how do I lower my blood pressure", "", "hypertension"},
	}
	for _, tt := range tests {
		res, err := ix.Retrieve(context.Background(), tt.query, tt.condition)
		require.NoError(t, err)
		require.True(t, res.Found, tt.query)
		assert.Equal(t, tt.want, res.Chunks[0].Metadata["doc_id"], tt.query)
	}

	for _, query := range []string{"what is the capital of france", "tell me a joke"} {
		res, err := ix.Retrieve(context.Background(), query, "")
		require.NoError(t, err)
		assert.False(t, res.Found, query)
	}
}

func TestHashEmbedder_Stems(t *testing.T) {
	emb := HashEmbedder{}
	vecs, err := emb.Embed(context.Background(), []string{"sleeping exercises", "sleep exercise"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, CosineSimilarity(vecs[0], vecs[1]), 1e-9)
	assert.Len(t, vecs[0], DefaultHashDim)
}

func TestChunks(t *testing.T) {
	para := strings.Repeat("word ", 80)
	docs := []Document{{
		ID:       "d1",
		Title:    "Doc",
		Tags:     []string{"a", "b"},
		Text:     para + "\n\n" + para + "\n\n" + para,
		Metadata: map[string]string{"source": "test"},
	}}

	chunks := Chunks(docs)
	require.Len(t, chunks, 3)
	assert.Equal(t, "d1", chunks[0].Metadata["doc_id"])
	assert.Equal(t, "3", chunks[2].Metadata["part"])
	assert.Equal(t, "a,b", chunks[0].Metadata["tags"])
	assert.Equal(t, "test", chunks[1].Metadata["source"])
}

func TestLoadKnowledge_Invalid(t *testing.T) {
	_, err := LoadKnowledge(strings.NewReader("documents:\n  - id: x\n    text: \"\"\n"))
	assert.Error(t, err)

	_, err = LoadKnowledge(strings.NewReader("documents: [[[["))
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
