// Package rag retrieves health knowledge passages for the assistant.
package rag

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Document is one entry of a knowledge file.
type Document struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Tags     []string          `yaml:"tags"`
	Text     string            `yaml:"text"`
	Metadata map[string]string `yaml:"metadata"`
}

type knowledgeFile struct {
	Documents []Document `yaml:"documents"`
}

// MaxChunkLen bounds the characters per chunk. Paragraphs are never split.
const MaxChunkLen = 600

// LoadKnowledge reads documents from YAML.
func LoadKnowledge(r io.Reader) ([]Document, error) {
	var f knowledgeFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge file: %w", err)
	}
	for i, d := range f.Documents {
		if strings.TrimSpace(d.Text) == "" {
			return nil, fmt.Errorf("document %d (%s) has no text", i, d.ID)
		}
		if d.ID == "" {
			f.Documents[i].ID = fmt.Sprintf("doc-%d", i+1)
		}
	}
	return f.Documents, nil
}

// LoadKnowledgeFile reads documents from path. An empty path loads the
// built-in knowledge base.
func LoadKnowledgeFile(path string) ([]Document, error) {
	if path == "" {
		return LoadKnowledge(strings.NewReader(string(defaultKnowledge)))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge file: %w", err)
	}
	defer f.Close()
	return LoadKnowledge(f)
}

// Chunks splits documents into retrieval units along paragraph breaks.
func Chunks(docs []Document) []Chunk {
	var out []Chunk
	for _, d := range docs {
		var cur strings.Builder
		part := 0
		flush := func() {
			text := strings.TrimSpace(cur.String())
			cur.Reset()
			if text == "" {
				return
			}
			part++
			meta := map[string]string{
				"doc_id": d.ID,
				"title":  d.Title,
				"part":   fmt.Sprint(part),
			}
			if len(d.Tags) > 0 {
				meta["tags"] = strings.Join(d.Tags, ",")
			}
			for k, v := range d.Metadata {
				meta[k] = v
			}
			out = append(out, Chunk{Text: text, Metadata: meta})
		}
		for _, para := range strings.Split(d.Text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if cur.Len() > 0 && cur.Len()+len(para) > MaxChunkLen {
				flush()
			}
			if cur.Len() > 0 {
				cur.WriteString("\n\n")
			}
			cur.WriteString(para)
		}
		flush()
	}
	return out
}
