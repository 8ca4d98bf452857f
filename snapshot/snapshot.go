// Package snapshot persists gathered flashblocks as a JSON array.
package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

var (
	errSnapshotFailedToRead  = errors.New("failed to read snapshot")
	errSnapshotFailedToParse = errors.New("failed to parse snapshot")
	errSnapshotFailedToWrite = errors.New("failed to write snapshot")
)

func Read(path string) ([]*flashblock.Flashblock, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w",
			errSnapshotFailedToRead, path, err,
		)
	}

	flashblocks := flashblock.List{}
	if err := json.Unmarshal(b, &flashblocks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w",
			errSnapshotFailedToParse, path, err,
		)
	}

	return flashblocks, nil
}

func Write(path string, flashblocks []*flashblock.Flashblock) error {
	b, err := json.MarshalIndent(flashblocks, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %w",
			errSnapshotFailedToWrite, path, err,
		)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w",
			errSnapshotFailedToWrite, path, err,
		)
	}

	return nil
}
