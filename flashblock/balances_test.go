package flashblock_test

import (
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ssz "github.com/ferranbt/fastssz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

func TestBalancesStride(t *testing.T) {
	balances := flashblock.Balances{}
	for n := 0; n < 5; n++ {
		b, err := balances.MarshalSSZ()
		require.NoError(t, err)
		assert.Len(t, b, 52*n)
		assert.Equal(t, len(b), balances.SizeSSZ())

		decoded := flashblock.Balances{}
		require.NoError(t, decoded.UnmarshalSSZ(b))
		assert.Equal(t, balances, decoded)

		balances[ethcommon.BytesToAddress([]byte{byte(n + 1)})] = flashblock.NewU256(uint64(n) * 1_000_000_007)
	}
}

func TestBalancesLayout(t *testing.T) {
	addr := ethcommon.HexToAddress("0x4200000000000000000000000000000000000011")
	balances := flashblock.Balances{
		addr: flashblock.NewU256(0x0a0b),
	}

	b, err := balances.MarshalSSZ()
	require.NoError(t, err)
	require.Len(t, b, 52)

	assert.Equal(t, addr[:], b[0:20])
	assert.Equal(t, byte(0x0b), b[20])
	assert.Equal(t, byte(0x0a), b[21])
	assert.Equal(t, make([]byte, 30), b[22:52])
}

func TestBalancesSortedByAddress(t *testing.T) {
	low := ethcommon.HexToAddress("0x0100000000000000000000000000000000000000")
	high := ethcommon.HexToAddress("0xff00000000000000000000000000000000000000")

	b, err := flashblock.Balances{
		high: flashblock.NewU256(1),
		low:  flashblock.NewU256(2),
	}.MarshalSSZ()
	require.NoError(t, err)

	assert.Equal(t, low[:], b[0:20])
	assert.Equal(t, high[:], b[52:72])
}

func TestBalancesRejectPartialEntries(t *testing.T) {
	for _, size := range []int{1, 20, 51, 53, 103, 105} {
		err := (&flashblock.Balances{}).UnmarshalSSZ(make([]byte, size))
		assert.ErrorIs(t, err, flashblock.ErrDecode, "size %d", size)
		assert.ErrorIs(t, err, ssz.ErrBytesLength, "size %d", size)
	}
}

func TestBalancesRejectDuplicateKeys(t *testing.T) {
	entry, err := flashblock.Balances{
		ethcommon.HexToAddress("0x01"): flashblock.NewU256(1),
	}.MarshalSSZ()
	require.NoError(t, err)

	err = (&flashblock.Balances{}).UnmarshalSSZ(append(append([]byte{}, entry...), entry...))
	assert.ErrorIs(t, err, flashblock.ErrDecode)
}

func TestBalancesEmpty(t *testing.T) {
	b, err := flashblock.Balances{}.MarshalSSZ()
	require.NoError(t, err)
	assert.Empty(t, b)

	decoded := flashblock.Balances(nil)
	require.NoError(t, decoded.UnmarshalSSZ(nil))
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}
