package flashblock_test

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/ethereum/go-ethereum/beacon/engine"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ssz "github.com/ferranbt/fastssz"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

func minimalFlashblock(id engine.PayloadID, index uint64) *flashblock.Flashblock {
	return &flashblock.Flashblock{
		PayloadID: id,
		Index:     index,
		Diff: flashblock.Diff{
			Transactions: []hexutil.Bytes{},
			Withdrawals:  []*ethtypes.Withdrawal{},
		},
		Metadata: flashblock.Metadata{
			Receipts:           flashblock.Receipts{},
			NewAccountBalances: flashblock.Balances{},
			BlockNumber:        index,
		},
	}
}

func TestFlashblockRoundTrip(t *testing.T) {
	for _, fb := range loadFixture(t) {
		b, err := fb.MarshalSSZ()
		require.NoError(t, err)
		assert.Len(t, b, fb.SizeSSZ())

		decoded := &flashblock.Flashblock{}
		require.NoError(t, decoded.UnmarshalSSZ(b))
		assert.Equal(t, fb, decoded)

		again, err := decoded.MarshalSSZ()
		require.NoError(t, err)
		assert.Equal(t, b, again)
	}
}

func TestListRoundTrip(t *testing.T) {
	flashblocks := loadFixture(t)

	b, err := flashblocks.MarshalSSZ()
	require.NoError(t, err)
	assert.Len(t, b, flashblocks.SizeSSZ())

	decoded := flashblock.List{}
	require.NoError(t, decoded.UnmarshalSSZ(b))
	assert.Equal(t, flashblocks, decoded)

	{ // empty
		b, err := flashblock.List{}.MarshalSSZ()
		require.NoError(t, err)
		assert.Empty(t, b)

		decoded := flashblock.List{}
		require.NoError(t, decoded.UnmarshalSSZ(b))
		assert.NotNil(t, decoded)
		assert.Empty(t, decoded)
	}
}

func TestFlashblockLayout(t *testing.T) {
	fb := minimalFlashblock(engine.PayloadID{1, 2, 3, 4, 5, 6, 7, 8}, 3)

	b, err := fb.MarshalSSZ()
	require.NoError(t, err)

	// fixed part, absent base, empty diff and metadata
	require.Len(t, b, 28+1+400+16)

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b[0:8])
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(b[8:16]))
	assert.Equal(t, uint32(28), binary.LittleEndian.Uint32(b[16:20]))
	assert.Equal(t, uint32(29), binary.LittleEndian.Uint32(b[20:24]))
	assert.Equal(t, uint32(429), binary.LittleEndian.Uint32(b[24:28]))
	assert.Equal(t, byte(0x00), b[28])
}

func TestBaseOnAnyIndex(t *testing.T) {
	flashblocks := loadFixture(t)

	withBase := minimalFlashblock(engine.PayloadID{0xff}, 7)
	withBase.Base = flashblocks[0].Base

	withoutBase := minimalFlashblock(engine.PayloadID{0xff}, 0)

	for _, fb := range []*flashblock.Flashblock{withBase, withoutBase} {
		b, err := fb.MarshalSSZ()
		require.NoError(t, err)

		decoded := &flashblock.Flashblock{}
		require.NoError(t, decoded.UnmarshalSSZ(b))
		assert.Equal(t, fb, decoded)
	}
}

func TestBaseFeeLittleEndian(t *testing.T) {
	base := &flashblock.Base{
		BaseFeePerGas: flashblock.NewU256(0x0102),
		ExtraData:     hexutil.Bytes{0xaa},
	}

	b, err := base.MarshalSSZ()
	require.NoError(t, err)
	require.Len(t, b, 176+1)

	assert.Equal(t, uint32(176), binary.LittleEndian.Uint32(b[140:144]))
	assert.Equal(t, byte(0x02), b[144])
	assert.Equal(t, byte(0x01), b[145])
	assert.Equal(t, make([]byte, 30), b[146:176])
	assert.Equal(t, byte(0xaa), b[176])
}

func TestDeterministicEncoding(t *testing.T) {
	addrs := []ethcommon.Address{
		ethcommon.HexToAddress("0x3000000000000000000000000000000000000000"),
		ethcommon.HexToAddress("0x1000000000000000000000000000000000000000"),
		ethcommon.HexToAddress("0x2000000000000000000000000000000000000000"),
	}

	var encodings [][]byte
	for i := 0; i < 10; i++ {
		fb := minimalFlashblock(engine.PayloadID{}, 0)
		for _, j := range rand.Perm(len(addrs)) {
			fb.Metadata.NewAccountBalances[addrs[j]] = flashblock.NewU256(uint64(j))
		}
		b, err := fb.MarshalSSZ()
		require.NoError(t, err)
		encodings = append(encodings, b)
	}

	for _, b := range encodings[1:] {
		assert.Equal(t, encodings[0], b)
	}
}

func TestPayloadIDIdentity(t *testing.T) {
	ids := []engine.PayloadID{
		{},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		{0x80},
		{0, 0, 0, 0, 0, 0, 0, 0x01},
	}
	for i := 0; i < 256; i++ {
		var id engine.PayloadID
		binary.LittleEndian.PutUint64(id[:], rand.Uint64())
		ids = append(ids, id)
	}

	for _, id := range ids {
		fb := minimalFlashblock(id, 0)

		b, err := fb.MarshalSSZ()
		require.NoError(t, err)
		assert.Equal(t, id[:], b[0:8])

		decoded := &flashblock.Flashblock{}
		require.NoError(t, decoded.UnmarshalSSZ(b))
		assert.Equal(t, id, decoded.PayloadID)
	}
}

func TestUnmarshalTruncatedFixedRegion(t *testing.T) {
	fb := minimalFlashblock(engine.PayloadID{}, 0)
	b, err := fb.MarshalSSZ()
	require.NoError(t, err)

	for _, size := range []int{0, 7, 8, 27} {
		err := (&flashblock.Flashblock{}).UnmarshalSSZ(b[:size])
		assert.ErrorIs(t, err, flashblock.ErrDecode)
		assert.ErrorIs(t, err, ssz.ErrSize)
	}
}

func TestUnmarshalInvalidOffsets(t *testing.T) {
	fb := minimalFlashblock(engine.PayloadID{}, 0)
	valid, err := fb.MarshalSSZ()
	require.NoError(t, err)

	for name, patch := range map[string]struct {
		at     int
		offset uint32
	}{
		"first offset past fixed part": {at: 16, offset: 29},
		"offset beyond buffer":         {at: 20, offset: uint32(len(valid) + 1)},
		"offsets going backwards":      {at: 24, offset: 28},
	} {
		t.Run(name, func(t *testing.T) {
			b := append([]byte{}, valid...)
			binary.LittleEndian.PutUint32(b[patch.at:patch.at+4], patch.offset)

			err := (&flashblock.Flashblock{}).UnmarshalSSZ(b)
			assert.ErrorIs(t, err, flashblock.ErrDecode)
			assert.ErrorIs(t, err, ssz.ErrOffset)
		})
	}
}

func TestUnmarshalInvalidUnionSelector(t *testing.T) {
	fb := minimalFlashblock(engine.PayloadID{}, 0)
	b, err := fb.MarshalSSZ()
	require.NoError(t, err)

	for _, selector := range []byte{0x02, 0x7f, 0xff} {
		b[28] = selector
		err := (&flashblock.Flashblock{}).UnmarshalSSZ(b)
		assert.ErrorIs(t, err, flashblock.ErrDecode)
	}

	{ // absent base with trailing bytes
		fb := minimalFlashblock(engine.PayloadID{}, 0)
		b, err := fb.MarshalSSZ()
		require.NoError(t, err)

		binary.LittleEndian.PutUint32(b[20:24], 30)
		err = (&flashblock.Flashblock{}).UnmarshalSSZ(b)
		assert.ErrorIs(t, err, flashblock.ErrDecode)
	}
}

func TestUnmarshalTruncatedTail(t *testing.T) {
	fb := loadFixture(t)[0]
	require.Len(t, fb.Metadata.NewAccountBalances, 2)

	b, err := fb.MarshalSSZ()
	require.NoError(t, err)

	// balances are the last section; any cut that is not a whole number of
	// entries must fail
	for cut := 1; cut < 52; cut++ {
		err := (&flashblock.Flashblock{}).UnmarshalSSZ(b[:len(b)-cut])
		assert.ErrorIs(t, err, flashblock.ErrDecode, "cut %d", cut)
	}
}

func TestUnmarshalDoesNotAliasInput(t *testing.T) {
	fb := loadFixture(t)[0]
	b, err := fb.MarshalSSZ()
	require.NoError(t, err)

	decoded := &flashblock.Flashblock{}
	require.NoError(t, decoded.UnmarshalSSZ(b))

	for i := range b {
		b[i] = 0
	}
	assert.Equal(t, fb, decoded)
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	flashblocks := loadFixture(t)

	b, err := json.Marshal(flashblocks)
	require.NoError(t, err)

	decoded := flashblock.List{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, flashblocks, decoded)
}

func TestMarshalNilEntries(t *testing.T) {
	{ // withdrawal
		fb := minimalFlashblock(engine.PayloadID{}, 0)
		fb.Diff.Withdrawals = []*ethtypes.Withdrawal{{Index: 1}, nil}

		assert.NotPanics(t, func() {
			_, err := fb.MarshalSSZ()
			assert.Error(t, err)
		})
	}

	{ // flashblock
		flashblocks := flashblock.List{minimalFlashblock(engine.PayloadID{}, 0), nil}

		assert.NotPanics(t, func() {
			assert.Equal(t, flashblocks[0].SizeSSZ()+2*4, flashblocks.SizeSSZ())
			_, err := flashblocks.MarshalSSZ()
			assert.Error(t, err)
		})
	}

	{ // receipt
		fb := minimalFlashblock(engine.PayloadID{}, 0)
		fb.Metadata.Receipts[ethcommon.HexToHash("0x01")] = nil

		assert.NotPanics(t, func() {
			_, err := fb.MarshalSSZ()
			assert.Error(t, err)
		})
	}
}

func TestAcceptedJSONAlwaysEncodes(t *testing.T) {
	for _, fb := range loadFixture(t) {
		b, err := json.Marshal(fb)
		require.NoError(t, err)

		reparsed := &flashblock.Flashblock{}
		require.NoError(t, json.Unmarshal(b, reparsed))

		encoded, err := reparsed.MarshalSSZ()
		require.NoError(t, err)

		decoded := &flashblock.Flashblock{}
		require.NoError(t, decoded.UnmarshalSSZ(encoded))
		assert.Equal(t, reparsed, decoded)
	}
}
