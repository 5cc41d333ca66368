package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline"
	"github.com/soulprintlabs/soulprint-pipeline/pipeline/fileutils"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if !cfg.Overwrite && fileutils.FileExists(cfg.OutputPath) {
		fmt.Fprintln(os.Stderr, "output file already exists (pass -overwrite):", cfg.OutputPath)
		os.Exit(1)
	}

	convs, err := pipeline.LoadConversationsFile(cfg.InputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	chunks := pipeline.ChunkConversations(convs)

	var buf bytes.Buffer
	if err := pipeline.WriteChunksJSONL(&buf, chunks); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := fileutils.WriteFileAtomicSameDir(cfg.OutputPath, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	stats := pipeline.SummarizeChunks(chunks)
	fmt.Fprintf(os.Stdout, "conversations=%d chunks=%d total_tokens=%d max_chunk_tokens=%d out=%s\n",
		stats.Conversations, stats.Chunks, stats.TotalTokens, stats.MaxChunkTokens, cfg.OutputPath)
}

type Config struct {
	InputPath  string
	OutputPath string
	Overwrite  bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to a ChatGPT export (zip archive or bare conversations.json)")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the chunks JSONL file to write")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite an existing output file")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-chunker -in export.zip -out chunks.jsonl")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.InputPath != "" {
		cfg.InputPath = filepath.Clean(cfg.InputPath)
	}
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
