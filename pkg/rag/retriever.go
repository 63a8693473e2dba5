package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/retry"
)

// Config tunes retrieval.
type Config struct {
	TopK      int     `mapstructure:"top_k"`
	Threshold float64 `mapstructure:"threshold"`
	ScoreGap  float64 `mapstructure:"score_gap"` // Keep only the top chunk when it leads by more than this
}

// Similarity cutoffs. Model embeddings score related passages well above
// 0.5; HashEmbedder only matches surface words and tops out lower.
const (
	DefaultThreshold = 0.5
	HashThreshold    = 0.25
)

// DefaultConfig returns the retrieval defaults for model embeddings.
func DefaultConfig() Config {
	return Config{TopK: 3, Threshold: DefaultThreshold, ScoreGap: 0.20}
}

// HashConfig returns the retrieval defaults for HashEmbedder.
func HashConfig() Config {
	c := DefaultConfig()
	c.Threshold = HashThreshold
	return c
}

// ErrEmptyIndex indicates an index built without chunks
var ErrEmptyIndex = errors.New("knowledge index is empty")

// Index holds embedded chunks in memory and answers queries by cosine
// similarity.
type Index struct {
	embedder Embedder
	cfg      Config
	policy   retry.Policy

	mu      sync.RWMutex
	chunks  []Chunk
	vectors [][]float32
}

// NewIndex creates an empty index.
func NewIndex(embedder Embedder, cfg Config) *Index {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	return &Index{embedder: embedder, cfg: cfg, policy: retry.DefaultPolicy()}
}

// WithRetryPolicy sets the policy used around embedding calls.
func (ix *Index) WithRetryPolicy(p retry.Policy) *Index {
	ix.policy = p
	return ix
}

// Build embeds chunks and replaces the index contents.
func (ix *Index) Build(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyIndex
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = indexText(c)
	}
	var vectors [][]float32
	err := retry.Do(ctx, "embed knowledge", ix.policy, func(ctx context.Context) error {
		var err error
		vectors, err = ix.embedder.Embed(ctx, texts)
		return err
	})
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ix.mu.Lock()
	ix.chunks = chunks
	ix.vectors = vectors
	ix.mu.Unlock()
	log.Info().Int("chunks", len(chunks)).Msg("Knowledge index built")
	return nil
}

// indexText is what gets embedded for c: the document title and tags ahead
// of the passage, so a chunk that never repeats its topic still matches it.
func indexText(c Chunk) string {
	head := strings.TrimSpace(c.Metadata["title"] + " " + strings.ReplaceAll(c.Metadata["tags"], ",", " "))
	if head == "" {
		return c.Text
	}
	return head + "\n" + c.Text
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Retrieve finds chunks relevant to query, enhanced with the user's
// condition. Chunks below the threshold are dropped; when the best chunk
// leads the second by more than the score gap only the best is returned.
func (ix *Index) Retrieve(ctx context.Context, query, condition string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, nil
	}
	enhanced := EnhanceQuery(query, condition)
	res := Result{Query: enhanced}

	var vec [][]float32
	err := retry.Do(ctx, "embed query", ix.policy, func(ctx context.Context) error {
		var err error
		vec, err = ix.embedder.Embed(ctx, []string{enhanced})
		return err
	})
	if err != nil {
		return res, err
	}
	if len(vec) != 1 {
		return res, fmt.Errorf("embedder returned %d vectors for 1 query", len(vec))
	}

	ix.mu.RLock()
	scored := make([]Chunk, 0, len(ix.chunks))
	for i, c := range ix.chunks {
		c.Score = CosineSimilarity(vec[0], ix.vectors[i])
		scored = append(scored, c)
	}
	ix.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > ix.cfg.TopK {
		scored = scored[:ix.cfg.TopK]
	}

	for _, c := range scored {
		if c.Score >= ix.cfg.Threshold {
			res.Chunks = append(res.Chunks, c)
		}
	}
	if len(res.Chunks) >= 2 && res.Chunks[0].Score-res.Chunks[1].Score > ix.cfg.ScoreGap {
		res.Chunks = res.Chunks[:1]
	}
	res.Found = len(res.Chunks) > 0

	log.Debug().Str("query", enhanced).Int("chunks", len(res.Chunks)).Msg("Knowledge retrieval")
	return res, nil
}
