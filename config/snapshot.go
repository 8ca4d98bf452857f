package config

import (
	"errors"
	"fmt"
	"os"
)

type Snapshot struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

var (
	errSnapshotInvalidInput = errors.New("invalid snapshot input file")
)

func (cfg *Snapshot) Validate() error {
	if cfg.Input == "" {
		return nil
	}

	info, err := os.Stat(cfg.Input)
	if err != nil {
		return fmt.Errorf("%w: %s: %w",
			errSnapshotInvalidInput, cfg.Input, err,
		)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s: is a directory",
			errSnapshotInvalidInput, cfg.Input,
		)
	}

	return nil
}
