package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writtenConversation(id, title string) ParsedConversation {
	return ParsedConversation{
		ID:        id,
		Title:     title,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Messages:  []ParsedMessage{{ID: id + "-m1", Role: RoleUser, Content: "hello"}},
	}
}

func TestWriteConversationFiles_Basic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	convs := []ParsedConversation{
		writtenConversation("conv-a", "First"),
		writtenConversation("conv-b", "Second"),
	}

	res, err := WriteConversationFiles(context.Background(), convs, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteConversationFiles: %v", err)
	}
	if res.FilesWritten != 2 {
		t.Fatalf("FilesWritten=%d, want 2", res.FilesWritten)
	}
	if res.BytesWritten == 0 {
		t.Fatalf("BytesWritten=0")
	}

	b, err := os.ReadFile(filepath.Join(dir, "conv-a.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got ParsedConversation
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if got.ID != "conv-a" || got.Title != "First" || len(got.Messages) != 1 {
		t.Fatalf("round-tripped conversation mismatch: %+v", got)
	}
}

func TestWriteConversationFiles_CollisionSuffix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	convs := []ParsedConversation{
		writtenConversation("same", "One"),
		writtenConversation("same", "Two"),
		writtenConversation("same", "Three"),
	}

	res, err := WriteConversationFiles(context.Background(), convs, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteConversationFiles: %v", err)
	}
	if res.FilesWritten != 3 {
		t.Fatalf("FilesWritten=%d, want 3", res.FilesWritten)
	}
	for _, name := range []string{"same.json", "same-2.json", "same-3.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestWriteConversationFiles_NoOverwriteByDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	convs := []ParsedConversation{writtenConversation("conv-a", "First")}

	if _, err := WriteConversationFiles(context.Background(), convs, dir, WriteOptions{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := WriteConversationFiles(context.Background(), convs, dir, WriteOptions{}); err == nil {
		t.Fatalf("second write without overwrite should fail")
	}
	if _, err := WriteConversationFiles(context.Background(), convs, dir, WriteOptions{OverwriteExisting: true}); err != nil {
		t.Fatalf("overwrite write: %v", err)
	}
}

func TestWriteConversationFiles_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	convs := []ParsedConversation{writtenConversation("conv-a", "First")}
	if _, err := WriteConversationFiles(ctx, convs, t.TempDir(), WriteOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestLoadConversationsFile_ZipAndBareJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := marshalConversations(t, []rawConversation{linearConversation()})

	jsonPath := filepath.Join(dir, "conversations.json")
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		t.Fatalf("write json fixture: %v", err)
	}
	zipPath := filepath.Join(dir, "export.zip")
	if err := os.WriteFile(zipPath, zipWithEntry(t, "conversations.json", raw), 0o644); err != nil {
		t.Fatalf("write zip fixture: %v", err)
	}

	fromJSON, err := LoadConversationsFile(jsonPath)
	if err != nil {
		t.Fatalf("load bare json: %v", err)
	}
	fromZip, err := LoadConversationsFile(zipPath)
	if err != nil {
		t.Fatalf("load zip: %v", err)
	}
	if len(fromJSON) != 1 || len(fromZip) != 1 {
		t.Fatalf("lens=%d/%d, want 1/1", len(fromJSON), len(fromZip))
	}
	if fromJSON[0].ID != fromZip[0].ID {
		t.Fatalf("zip and bare json disagree: %q vs %q", fromZip[0].ID, fromJSON[0].ID)
	}
}

func TestSanitizeFilenameComponent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"conv-123":         "conv-123",
		"../../etc/passwd": "etc_passwd",
		"  spaced out  ":   "spaced_out",
		"...":              "",
		"名前":               "名前",
	}
	for in, want := range cases {
		if got := sanitizeFilenameComponent(in); got != want {
			t.Fatalf("sanitizeFilenameComponent(%q)=%q, want %q", in, got, want)
		}
	}
	if strings.ContainsAny(sanitizeFilenameComponent("a/b\\c:d"), `/\:`) {
		t.Fatalf("path separators survived sanitization")
	}
}
