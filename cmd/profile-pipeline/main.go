package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline"
	"github.com/soulprintlabs/soulprint-pipeline/pipeline/fileutils"
	"github.com/soulprintlabs/soulprint-pipeline/pipeline/provider"
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

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	log, err := buildLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, apiKey, log); err != nil {
		log.Error("import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, apiKey string, log *zap.Logger) error {
	userID := cfg.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	log = log.With(zap.String("run_id", uuid.NewString()), zap.String("user_id", userID))

	convs, err := pipeline.LoadConversationsFile(cfg.InputPath)
	if err != nil {
		return err
	}
	log.Info("export parsed", zap.Int("conversations", len(convs)))

	gen := provider.NewOpenAIGenerator(cfg.Model, option.WithAPIKey(apiKey))
	synth := pipeline.NewSynthesizer(gen,
		pipeline.WithTimeout(cfg.Timeout),
		pipeline.WithLogger(log),
	)

	started := time.Now()
	profile := synth.Synthesize(ctx, convs)
	elapsed := time.Since(started)

	fields := pipeline.ProfileFields(profile)
	if fields == nil {
		log.Warn("profile synthesis degraded, storing placeholder", zap.Duration("elapsed", elapsed))
		fields = placeholderFields()
	} else {
		log.Info("profile synthesized", zap.Duration("elapsed", elapsed))
	}

	store := newFileStore(cfg.OutputDir)
	if err := store.Save(ctx, userID, fields); err != nil {
		return err
	}

	if profile != nil {
		userDir := filepath.Join(cfg.OutputDir, userID)
		if err := fileutils.WriteJSONFileAtomic(filepath.Join(userDir, "profile.json"), profile, true); err != nil {
			return err
		}
		if err := fileutils.WriteFileAtomicSameDir(filepath.Join(userDir, "profile.md"), []byte(profile.ProfileText), 0o644); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "user_id=%s conversations=%d profile=%t out_dir=%s\n",
		userID, len(convs), profile != nil, cfg.OutputDir)
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type Config struct {
	InputPath string
	OutputDir string
	Model     string
	UserID    string
	APIKey    string
	Timeout   time.Duration
	Verbose   bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to a ChatGPT export (zip archive or bare conversations.json)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory to write the profile artifacts into")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model used for profile synthesis")
	fs.StringVar(&cfg.UserID, "user", "", "User id to store the profile under (default: a new UUID)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (default: OPENAI_API_KEY env var)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Hard timeout on the synthesis call")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Human-readable development logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/profile-pipeline -in export.zip -out profile")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/profile-pipeline -in conversations.json -user u-123 -model gpt-5-mini")
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
