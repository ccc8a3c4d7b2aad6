package rag

import (
	"fmt"
	"strings"
)

const promptRules = "Answer ONLY using [CONTEXT]. If not present, reply exactly: not found.\n" +
	"Every sentence MUST end with [n] citations from [CONTEXT]. Do not invent sources. Be concise."

// BuildPrompt assembles the citation-annotated prompt from the top reranked
// chunks and returns it together with the context map. Each chunk gets a
// 1-based index in relevance order so the generator can reference [n].
func BuildPrompt(query string, ranked []Chunk, contextLimit int) (string, ContextMap) {
	if contextLimit > len(ranked) {
		contextLimit = len(ranked)
	}

	numbered := make([]string, 0, contextLimit)
	cmap := make(ContextMap, 0, contextLimit)
	for i, c := range ranked[:contextLimit] {
		idx := i + 1
		numbered = append(numbered, fmt.Sprintf("[%d] %s (file: %s, chunk #%s)",
			idx, strings.TrimSpace(c.Text), c.DocID, c.ChunkID))
		cmap = append(cmap, ContextItem{
			Index:   idx,
			DocID:   c.DocID,
			ChunkID: c.ChunkID,
			Text:    c.Text,
			Score:   c.Score,
		})
	}

	var b strings.Builder
	b.WriteString("[SYSTEM]\n")
	b.WriteString(promptRules)
	b.WriteString("\n\n[CONTEXT]\n")
	b.WriteString(strings.Join(numbered, "\n\n"))
	b.WriteString("\n\n[QUESTION]\n")
	b.WriteString(query)
	b.WriteString("\n\n[INSTRUCTIONS]\n")
	b.WriteString("- Each sentence ends with citation(s) like [1] or [1][2]\n")
	b.WriteString("- If unsupported, reply: not found\n")
	return b.String(), cmap
}
