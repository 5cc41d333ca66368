package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// ChunkStats summarizes a chunking run for operator output.
type ChunkStats struct {
	Conversations  int
	Chunks         int
	TotalTokens    int
	MaxChunkTokens int
}

// WriteChunksJSONL writes chunks as JSON Lines, one chunk per line, in
// order. JSONL keeps the embedding stage streaming-friendly: a consumer
// can process chunk N without holding N-1 in memory.
func WriteChunksJSONL(w io.Writer, chunks []Chunk) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, ch := range chunks {
		if err := enc.Encode(ch); err != nil {
			return fmt.Errorf("WriteChunksJSONL: encode chunk %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteChunksJSONL: flush: %w", err)
	}
	return nil
}

// SummarizeChunks computes per-run stats over a chunk set.
func SummarizeChunks(chunks []Chunk) ChunkStats {
	stats := ChunkStats{Chunks: len(chunks)}
	convs := make(map[string]struct{})
	for _, ch := range chunks {
		convs[ch.Metadata.ConversationID] = struct{}{}
		tokens := EstimateTokens(ch.Content)
		stats.TotalTokens += tokens
		if tokens > stats.MaxChunkTokens {
			stats.MaxChunkTokens = tokens
		}
	}
	stats.Conversations = len(convs)
	return stats
}
