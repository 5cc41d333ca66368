package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// targetChunkTokens is the chunk size the embedding pipeline wants.
const targetChunkTokens = 400

// targetChunkChars is targetChunkTokens at the package-wide chars/token
// estimate.
const targetChunkChars = targetChunkTokens * charsPerToken

// maxChunkChars allows 20% overflow past the target so a chunk is never
// split in the middle of a message. Message atomicity within a chunk is a
// hard invariant.
const maxChunkChars = targetChunkChars * 12 / 10

const chunkMessageSeparator = "\n\n"

// ChunkConversations splits conversations into embedding-ready chunks.
// Unlike the sampler, this walks the full conversation set: the retrieval
// index it feeds should cover everything, not just the richest subset.
//
// Chunks for one conversation are fully materialized before any is final,
// because TotalChunks is back-filled once the count is known.
func ChunkConversations(convs []ParsedConversation) []Chunk {
	var out []Chunk
	for _, c := range convs {
		out = append(out, chunkConversation(c)...)
	}
	return out
}

func chunkConversation(c ParsedConversation) []Chunk {
	if len(c.Messages) == 0 {
		return nil
	}

	header := chunkHeader(c)

	var chunks []Chunk
	var buf []string
	var bufLen int
	var bufMsgs []ParsedMessage

	flush := func() {
		if len(buf) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Content:  header + strings.Join(buf, chunkMessageSeparator),
			Metadata: chunkMetadata(c, len(chunks), bufMsgs),
		})
		buf = nil
		bufLen = 0
		bufMsgs = nil
	}

	for _, m := range c.Messages {
		formatted := formatChunkMessage(m)
		added := len(formatted)
		if len(buf) > 0 {
			added += len(chunkMessageSeparator)
		}
		if len(buf) > 0 && len(header)+bufLen+added > maxChunkChars {
			flush()
			added = len(formatted)
		}
		buf = append(buf, formatted)
		bufLen += added
		bufMsgs = append(bufMsgs, m)
	}
	flush()

	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks
}

// chunkHeader is the fixed context prefix every chunk carries so a chunk
// retrieved in isolation still identifies its conversation.
func chunkHeader(c ParsedConversation) string {
	return fmt.Sprintf("[Conversation: %s]\n[Date: %s]\n\n", c.Title, formatDate(c.CreatedAt))
}

func formatChunkMessage(m ParsedMessage) string {
	label := "Assistant"
	if m.Role == RoleUser {
		label = "Human"
	}
	return label + ": " + m.Content
}

func chunkMetadata(c ParsedConversation, index int, msgs []ParsedMessage) ChunkMetadata {
	ids := make([]string, 0, len(msgs))
	var start, end *time.Time
	for _, m := range msgs {
		ids = append(ids, m.ID)
		if m.Timestamp == nil {
			continue
		}
		t := *m.Timestamp
		if start == nil || t.Before(*start) {
			start = &t
		}
		if end == nil || t.After(*end) {
			end = &t
		}
	}
	return ChunkMetadata{
		ConversationID:        c.ID,
		ConversationTitle:     c.Title,
		ConversationCreatedAt: c.CreatedAt,
		ChunkIndex:            index,
		MessageIDs:            ids,
		StartTimestamp:        start,
		EndTimestamp:          end,
	}
}
