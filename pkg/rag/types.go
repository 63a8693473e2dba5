package rag

import "strings"

// Chunk is one retrieved knowledge passage.
type Chunk struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is what a retrieval returns. Found is false when no chunk passed
// the similarity threshold.
type Result struct {
	Found  bool    `json:"found"`
	Query  string  `json:"query"`
	Chunks []Chunk `json:"chunks"`
}

// Context joins the chunk texts for prompting.
func (r Result) Context() string {
	if !r.Found {
		return ""
	}
	texts := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n\n")
}
