package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline/fileutils"
)

// WriteOptions controls how parsed conversations are written to disk.
type WriteOptions struct {
	Pretty            bool
	OverwriteExisting bool
	FileMode          fs.FileMode
}

// WriteResult reports what a write pass produced.
type WriteResult struct {
	FilesWritten int
	BytesWritten int64
}

// LoadConversationsFile reads a ChatGPT export from disk: either the full
// zip archive or a bare conversations.json. Zip is detected by magic, not
// extension, since user uploads arrive named all sorts of things.
func LoadConversationsFile(path string) ([]ParsedConversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConversationsFile: %w", err)
	}
	if len(data) >= 2 && data[0] == 'P' && data[1] == 'K' {
		return ParseExportArchive(data)
	}
	convs, err := ParseConversationsJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("LoadConversationsFile: %w", err)
	}
	return convs, nil
}

// WriteConversationFiles writes one JSON file per conversation into
// outputDir. Filenames derive from the conversation id (sanitized for the
// filesystem); duplicates get a -2, -3... suffix in input order so reruns
// on the same export are stable. Files are written atomically.
func WriteConversationFiles(ctx context.Context, convs []ParsedConversation, outputDir string, opts WriteOptions) (WriteResult, error) {
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("WriteConversationFiles: mkdir output dir: %w", err)
	}

	var res WriteResult
	seen := make(map[string]int, len(convs))
	for _, conv := range convs {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		base := sanitizeFilenameComponent(conv.ID)
		if base == "" {
			base = "conversation"
		}

		seenCount := seen[base]
		seen[base] = seenCount + 1

		filename := base
		if seenCount > 0 {
			filename = fmt.Sprintf("%s-%d", base, seenCount+1)
		}
		filename += ".json"

		outPath := filepath.Join(outputDir, filename)
		if !opts.OverwriteExisting {
			if _, err := os.Stat(outPath); err == nil {
				return res, fmt.Errorf("WriteConversationFiles: output file already exists: %s", outPath)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return res, fmt.Errorf("WriteConversationFiles: stat output file: %w", err)
			}
		}

		var data []byte
		var err error
		if opts.Pretty {
			data, err = json.MarshalIndent(conv, "", "  ")
		} else {
			data, err = json.Marshal(conv)
		}
		if err != nil {
			return res, fmt.Errorf("WriteConversationFiles: marshal (id=%q): %w", conv.ID, err)
		}

		if err := fileutils.WriteFileAtomicSameDir(outPath, data, opts.FileMode); err != nil {
			return res, fmt.Errorf("WriteConversationFiles: write output (id=%q): %w", conv.ID, err)
		}
		res.FilesWritten++
		res.BytesWritten += int64(len(data))
	}
	return res, nil
}

// sanitizeFilenameComponent keeps letters, digits, '-', '_' and '.' and
// replaces everything else with '_', then trims separators so the result
// can never escape the output directory or hide as a dotfile.
func sanitizeFilenameComponent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	out = strings.Trim(out, "._-")
	return strings.TrimSpace(out)
}
