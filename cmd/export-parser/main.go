package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	convs, err := pipeline.LoadConversationsFile(cfg.InputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	res, err := pipeline.WriteConversationFiles(ctx, convs, cfg.OutputDir, pipeline.WriteOptions{
		Pretty:            cfg.Pretty,
		OverwriteExisting: cfg.Overwrite,
		FileMode:          0o644,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "conversations_written=%d bytes_written=%d out_dir=%s\n", res.FilesWritten, res.BytesWritten, cfg.OutputDir)
}

type Config struct {
	InputPath string
	OutputDir string
	Pretty    bool
	Overwrite bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to a ChatGPT export (zip archive or bare conversations.json)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory to write per-conversation JSON files into")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print each output JSON file")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/export-parser -in export.zip -out conversations")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/export-parser -in conversations.json -out conversations -pretty -overwrite")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.InputPath != "" {
		cfg.InputPath = filepath.Clean(cfg.InputPath)
	}
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	return cfg, nil
}
