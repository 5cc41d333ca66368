package main

import (
	"errors"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutputPath: filepath.FromSlash("chunks.jsonl"),
	}
}
