package flashblock

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ssz "github.com/ferranbt/fastssz"
	"github.com/goccy/go-json"
)

const sizeReceiptLength = 4

var (
	_ ssz.Marshaler   = (*Receipts)(nil)
	_ ssz.Unmarshaler = (*Receipts)(nil)
)

// Receipts maps transaction hashes to their receipts.
//
// In SSZ every entry is a 32-byte hash, a 4-byte big-endian length and that
// many bytes of the JSON-encoded receipt. Entries are emitted in ascending
// hash order.
type Receipts map[ethcommon.Hash]*Receipt

// SizeSSZ JSON-encodes every receipt to learn its length. Receipts that can
// not be encoded are not counted, MarshalSSZTo reports them instead.
func (r Receipts) SizeSSZ() int {
	size := 0
	for _, receipt := range r {
		if receipt == nil {
			continue
		}
		if payload, err := json.Marshal(receipt); err == nil {
			size += ethcommon.HashLength + sizeReceiptLength + len(payload)
		}
	}
	return size
}

func (r Receipts) MarshalSSZ() ([]byte, error) {
	return r.MarshalSSZTo(make([]byte, 0))
}

func (r Receipts) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	for _, hash := range r.sortedKeys() {
		receipt := r[hash]
		if receipt == nil {
			return nil, fmt.Errorf("receipts: %s: %w",
				hash, errNilEntry,
			)
		}
		payload, err := json.Marshal(receipt)
		if err != nil {
			return nil, fmt.Errorf("receipts: %s: %w",
				hash, err,
			)
		}
		dst = append(dst, hash[:]...)
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
		dst = append(dst, payload...)
	}
	return dst, nil
}

func (r *Receipts) UnmarshalSSZ(buf []byte) error {
	res := make(Receipts)

	for pos := 0; pos < len(buf); {
		if len(buf)-pos < ethcommon.HashLength+sizeReceiptLength {
			return errMinSize("receipts", pos+ethcommon.HashLength+sizeReceiptLength, len(buf))
		}

		hash := ethcommon.BytesToHash(buf[pos : pos+ethcommon.HashLength])
		pos += ethcommon.HashLength
		length := int(binary.BigEndian.Uint32(buf[pos : pos+sizeReceiptLength]))
		pos += sizeReceiptLength

		if length > len(buf)-pos {
			return errMinSize("receipts", pos+length, len(buf))
		}
		if _, exists := res[hash]; exists {
			return fmtDecode("receipts", errDuplicateKey, "%s at position %d", hash, pos-sizeReceiptLength-ethcommon.HashLength)
		}

		receipt := &Receipt{}
		if err := json.Unmarshal(buf[pos:pos+length], receipt); err != nil {
			return fmtDecode("receipts", errInvalidReceiptPayload, "%s: %v", hash, err)
		}
		res[hash] = receipt
		pos += length
	}

	*r = res
	return nil
}

func (r Receipts) sortedKeys() []ethcommon.Hash {
	keys := make([]ethcommon.Hash, 0, len(r))
	for hash := range r {
		keys = append(keys, hash)
	}
	slices.SortFunc(keys, func(l, rr ethcommon.Hash) int {
		return bytes.Compare(l[:], rr[:])
	})
	return keys
}
