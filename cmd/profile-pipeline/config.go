package main

import (
	"errors"
	"path/filepath"
	"time"
)

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputDir == "" {
		return errors.New("missing -out")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutputDir: filepath.FromSlash("profile"),
		Model:     "gpt-5-mini",
		Timeout:   45 * time.Second,
	}
}
