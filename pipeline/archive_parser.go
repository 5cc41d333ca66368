package pipeline

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// exportEntryName is the conventional name of the conversations document
// inside a ChatGPT export archive.
const exportEntryName = "conversations.json"

// defaultTitle is used for conversations exported without a title.
const defaultTitle = "Untitled Conversation"

// ErrMissingArchiveEntry indicates the export archive does not contain the
// expected conversations document. This is a malformed upload and should
// surface to the user rather than be swallowed.
var ErrMissingArchiveEntry = errors.New("archive is missing conversations.json")

// ParseExportArchive reads a ChatGPT export archive (zip bytes) and returns
// the flat, ordered conversations found in its conversations.json entry.
//
// One malformed conversation never fails the batch: it simply yields zero
// messages and is dropped from the result. Structural problems (no archive
// entry, unreadable JSON) do fail, with a specific error.
func ParseExportArchive(data []byte) ([]ParsedConversation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ParseExportArchive: open archive: %w", err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if path.Base(f.Name) == exportEntryName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("ParseExportArchive: %w", ErrMissingArchiveEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("ParseExportArchive: open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	convs, err := ParseConversationsJSON(rc)
	if err != nil {
		return nil, fmt.Errorf("ParseExportArchive: %w", err)
	}
	return convs, nil
}

// ParseConversationsJSON streams a raw conversations document (a top-level
// JSON array of conversation trees) into parsed conversations. The export
// is typically one huge line, so this decodes element by element instead of
// reading the whole value into memory.
func ParseConversationsJSON(r io.Reader) ([]ParsedConversation, error) {
	dec := json.NewDecoder(bufio.NewReaderSize(r, 1<<20))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("ParseConversationsJSON: read first token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("ParseConversationsJSON: expected top-level JSON array, got %v", tok)
	}

	var out []ParsedConversation
	for dec.More() {
		var raw rawConversation
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("ParseConversationsJSON: decode conversation element: %w", err)
		}
		conv, ok := parseConversation(raw)
		if !ok {
			continue
		}
		out = append(out, conv)
	}

	if tok, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("ParseConversationsJSON: read closing array token: %w", err)
	} else if d, ok := tok.(json.Delim); !ok || d != ']' {
		return nil, fmt.Errorf("ParseConversationsJSON: expected closing ']', got %v", tok)
	}
	return out, nil
}

type rawConversation struct {
	ID             string                `json:"id"`
	ConversationID string                `json:"conversation_id"`
	Title          string                `json:"title"`
	CreateTime     *float64              `json:"create_time"`
	UpdateTime     *float64              `json:"update_time"`
	CurrentNode    string                `json:"current_node"`
	Mapping        map[string]rawMapNode `json:"mapping"`
}

type rawMapNode struct {
	ID       string      `json:"id"`
	Message  *rawMessage `json:"message"`
	Parent   *string     `json:"parent"`
	Children []string    `json:"children"`
}

type rawMessage struct {
	ID         string          `json:"id"`
	Author     rawAuthor       `json:"author"`
	CreateTime *float64        `json:"create_time"`
	Content    json.RawMessage `json:"content"`
}

type rawAuthor struct {
	Role string `json:"role"`
}

// parseConversation flattens one raw conversation tree into ordered
// messages. Returns ok=false when the conversation yields no messages.
func parseConversation(raw rawConversation) (ParsedConversation, bool) {
	id := raw.ConversationID
	if id == "" {
		id = raw.ID
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = defaultTitle
	}

	var msgs []ParsedMessage
	for _, nodeID := range activePath(raw.Mapping, raw.CurrentNode) {
		node := raw.Mapping[nodeID]
		if node.Message == nil {
			continue
		}
		m, ok := parseMessage(nodeID, *node.Message)
		if !ok {
			continue
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return ParsedConversation{}, false
	}

	return ParsedConversation{
		ID:        id,
		Title:     title,
		CreatedAt: unixSecondsToTime(raw.CreateTime),
		UpdatedAt: unixSecondsToTime(raw.UpdateTime),
		Messages:  msgs,
	}, true
}

// activePath returns the ordered node ids of the single branch a reader
// would see: the root-to-leaf walk that prefers ancestors of current_node
// and falls back to the first-authored child where the preferred set gives
// no guidance. Edited/regenerated siblings off this path are ignored.
func activePath(mapping map[string]rawMapNode, currentNode string) []string {
	if len(mapping) == 0 {
		return nil
	}

	root := findRoot(mapping)
	if root == "" {
		return nil
	}

	preferred := ancestorSet(mapping, currentNode)

	var ordered []string
	visited := make(map[string]struct{}, len(mapping))
	cur := root
	for {
		if _, ok := visited[cur]; ok {
			break
		}
		visited[cur] = struct{}{}
		ordered = append(ordered, cur)

		node, ok := mapping[cur]
		if !ok || len(node.Children) == 0 {
			break
		}

		next := ""
		for _, child := range node.Children {
			if _, ok := preferred[child]; ok {
				next = child
				break
			}
		}
		if next == "" {
			next = node.Children[0]
		}
		if _, ok := mapping[next]; !ok {
			break
		}
		cur = next
	}
	return ordered
}

// findRoot picks the node whose parent is absent or unresolvable. Exports
// have exactly one; if a malformed mapping produces several, the smallest
// id wins so the choice is stable across runs.
func findRoot(mapping map[string]rawMapNode) string {
	var candidates []string
	for id, node := range mapping {
		if node.Parent == nil || *node.Parent == "" {
			candidates = append(candidates, id)
			continue
		}
		if _, ok := mapping[*node.Parent]; !ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[0]
}

// ancestorSet walks backward from currentNode through parent links and
// collects every visited id. Unresolvable start or broken links just end
// the walk; a cycle guard bounds it on corrupt mappings.
func ancestorSet(mapping map[string]rawMapNode, currentNode string) map[string]struct{} {
	set := make(map[string]struct{})
	cur := currentNode
	for i := 0; i <= len(mapping); i++ {
		node, ok := mapping[cur]
		if !ok {
			break
		}
		if _, seen := set[cur]; seen {
			break
		}
		set[cur] = struct{}{}
		if node.Parent == nil || *node.Parent == "" {
			break
		}
		cur = *node.Parent
	}
	return set
}

func parseMessage(nodeID string, m rawMessage) (ParsedMessage, bool) {
	role := strings.TrimSpace(m.Author.Role)
	if role == RoleSystem || role == RoleTool {
		return ParsedMessage{}, false
	}

	content := extractContent(m.Content)
	if content == "" {
		return ParsedMessage{}, false
	}

	id := m.ID
	if id == "" {
		id = nodeID
	}

	var ts *time.Time
	if t := unixSecondsToTime(m.CreateTime); !t.IsZero() {
		ts = &t
	}

	return ParsedMessage{
		ID:        id,
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}, true
}

// extractContent pulls text out of the polymorphic content value. A flat
// "text" field wins; otherwise string parts are joined with newlines and
// non-string parts (image pointers and the like) are skipped.
func extractContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var probe struct {
		Text  string `json:"text"`
		Parts []any  `json:"parts"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}

	if s := strings.TrimSpace(probe.Text); s != "" {
		return s
	}

	var parts []string
	for _, p := range probe.Parts {
		if s, ok := p.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
