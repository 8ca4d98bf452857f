package flashblock

import (
	"bytes"
	"slices"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ssz "github.com/ferranbt/fastssz"
)

const strideBalance = ethcommon.AddressLength + sizeU256

var (
	_ ssz.Marshaler   = (*Balances)(nil)
	_ ssz.Unmarshaler = (*Balances)(nil)
)

// Balances maps accounts to their updated balances.
//
// In SSZ every entry takes exactly 52 bytes (20 bytes of address followed by
// 32 bytes of balance) and the entries are concatenated without any count or
// separator, so the enclosing offset table delimits the map. Entries are
// emitted in ascending address order.
type Balances map[ethcommon.Address]U256

func (b Balances) SizeSSZ() int {
	return len(b) * strideBalance
}

func (b Balances) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(b)
}

func (b Balances) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	for _, addr := range b.sortedKeys() {
		balance := b[addr]
		dst = append(dst, addr[:]...)
		dst = marshalU256(dst, &balance)
	}
	return dst, nil
}

func (b *Balances) UnmarshalSSZ(buf []byte) error {
	if len(buf)%strideBalance != 0 {
		return errStride("new_account_balances", strideBalance, len(buf))
	}

	res := make(Balances, len(buf)/strideBalance)
	for pos := 0; pos < len(buf); pos += strideBalance {
		addr := ethcommon.BytesToAddress(buf[pos : pos+ethcommon.AddressLength])
		if _, exists := res[addr]; exists {
			return fmtDecode("new_account_balances", errDuplicateKey, "%s at position %d", addr, pos)
		}
		res[addr] = unmarshalU256(buf[pos+ethcommon.AddressLength : pos+strideBalance])
	}

	*b = res
	return nil
}

func (b Balances) sortedKeys() []ethcommon.Address {
	keys := make([]ethcommon.Address, 0, len(b))
	for addr := range b {
		keys = append(keys, addr)
	}
	slices.SortFunc(keys, func(l, r ethcommon.Address) int {
		return bytes.Compare(l[:], r[:])
	})
	return keys
}
