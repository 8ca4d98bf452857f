package flashblock_test

import (
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

func loadFixture(t *testing.T) flashblock.List {
	t.Helper()

	b, err := os.ReadFile("./testdata/flashblocks.json")
	require.NoError(t, err)

	flashblocks := flashblock.List{}
	require.NoError(t, json.Unmarshal(b, &flashblocks))
	require.Len(t, flashblocks, 2)

	return flashblocks
}
