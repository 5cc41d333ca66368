package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline/fileutils"
)

// fileStore persists the profile fields map as a JSON document per user.
// The hosted system writes the same map to its user record; this keeps the
// CLI self-contained.
type fileStore struct {
	dir string
}

func newFileStore(dir string) *fileStore {
	return &fileStore{dir: dir}
}

func (s *fileStore) Save(ctx context.Context, userID string, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, userID, "fields.json")
	if err := fileutils.WriteJSONFileAtomic(path, fields, true); err != nil {
		return fmt.Errorf("fileStore.Save: %w", err)
	}
	return nil
}

// placeholderFields is what gets stored when synthesis degrades: the
// import still succeeds, the profile just says there is nothing to say yet.
func placeholderFields() map[string]string {
	return map[string]string{
		"profile_text": "Not enough conversation history to build a profile yet.",
	}
}
