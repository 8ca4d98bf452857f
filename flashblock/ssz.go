package flashblock

import (
	"bytes"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ssz "github.com/ferranbt/fastssz"
)

const (
	bytesPerLengthOffset = 4

	sizeBaseFixed       = 176
	sizeDiffFixed       = 400
	sizeFlashblockFixed = 28
	sizeMetadataFixed   = 16
	sizeWithdrawal      = 44

	unionNone = 0x00
	unionSome = 0x01
)

var (
	_ ssz.Marshaler   = (*Flashblock)(nil)
	_ ssz.Unmarshaler = (*Flashblock)(nil)
	_ ssz.Marshaler   = (*Base)(nil)
	_ ssz.Unmarshaler = (*Base)(nil)
	_ ssz.Marshaler   = (*Diff)(nil)
	_ ssz.Unmarshaler = (*Diff)(nil)
	_ ssz.Marshaler   = (*Metadata)(nil)
	_ ssz.Unmarshaler = (*Metadata)(nil)
	_ ssz.Marshaler   = (*List)(nil)
	_ ssz.Unmarshaler = (*List)(nil)
)

// Flashblock

func (f *Flashblock) SizeSSZ() int {
	size := sizeFlashblockFixed + 1
	if f.Base != nil {
		size += f.Base.SizeSSZ()
	}
	size += f.Diff.SizeSSZ()
	size += f.Metadata.SizeSSZ()
	return size
}

// MarshalSSZ sizes the buffer from the fixed parts only, SizeSSZ would
// JSON-encode every receipt once more.
func (f *Flashblock) MarshalSSZ() ([]byte, error) {
	return f.MarshalSSZTo(make([]byte, 0, sizeFlashblockFixed+1+sizeDiffFixed+sizeMetadataFixed))
}

func (f *Flashblock) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	offset := sizeFlashblockFixed

	dst = marshalPayloadID(dst, f.PayloadID)
	dst = ssz.MarshalUint64(dst, f.Index)

	dst = ssz.WriteOffset(dst, offset) // base
	offset += 1
	if f.Base != nil {
		offset += f.Base.SizeSSZ()
	}

	dst = ssz.WriteOffset(dst, offset) // diff
	offset += f.Diff.SizeSSZ()

	dst = ssz.WriteOffset(dst, offset) // metadata

	var err error
	if f.Base == nil {
		dst = append(dst, unionNone)
	} else {
		dst = append(dst, unionSome)
		if dst, err = f.Base.MarshalSSZTo(dst); err != nil {
			return nil, err
		}
	}
	if dst, err = f.Diff.MarshalSSZTo(dst); err != nil {
		return nil, err
	}
	if dst, err = f.Metadata.MarshalSSZTo(dst); err != nil {
		return nil, err
	}

	return dst, nil
}

func (f *Flashblock) UnmarshalSSZ(buf []byte) error {
	sections, err := variableSections("flashblock", buf, sizeFlashblockFixed, 16, 20, 24)
	if err != nil {
		return err
	}

	res := Flashblock{}

	if res.PayloadID, err = unmarshalPayloadID(buf[0:8]); err != nil {
		return err
	}
	res.Index = ssz.UnmarshallUint64(buf[8:16])

	if res.Base, err = unmarshalOptionalBase(sections[0]); err != nil {
		return err
	}
	if err := res.Diff.UnmarshalSSZ(sections[1]); err != nil {
		return err
	}
	if err := res.Metadata.UnmarshalSSZ(sections[2]); err != nil {
		return err
	}

	*f = res
	return nil
}

func unmarshalOptionalBase(buf []byte) (*Base, error) {
	if len(buf) == 0 {
		return nil, errMinSize("base", 1, 0)
	}

	switch buf[0] {
	case unionNone:
		if len(buf) != 1 {
			return nil, errFixedSize("base", 1, len(buf))
		}
		return nil, nil
	case unionSome:
		base := &Base{}
		if err := base.UnmarshalSSZ(buf[1:]); err != nil {
			return nil, err
		}
		return base, nil
	default:
		return nil, fmtDecode("base", errInvalidUnionSelector, "0x%02x", buf[0])
	}
}

// Base

func (b *Base) SizeSSZ() int {
	return sizeBaseFixed + len(b.ExtraData)
}

func (b *Base) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(b)
}

func (b *Base) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf

	dst = append(dst, b.ParentBeaconBlockRoot[:]...)
	dst = append(dst, b.ParentHash[:]...)
	dst = append(dst, b.FeeRecipient[:]...)
	dst = append(dst, b.PrevRandao[:]...)
	dst = ssz.MarshalUint64(dst, uint64(b.BlockNumber))
	dst = ssz.MarshalUint64(dst, uint64(b.GasLimit))
	dst = ssz.MarshalUint64(dst, uint64(b.Timestamp))
	dst = ssz.WriteOffset(dst, sizeBaseFixed) // extra data
	dst = marshalU256(dst, &b.BaseFeePerGas)

	dst = append(dst, b.ExtraData...)

	return dst, nil
}

func (b *Base) UnmarshalSSZ(buf []byte) error {
	sections, err := variableSections("base", buf, sizeBaseFixed, 140)
	if err != nil {
		return err
	}

	res := Base{
		ParentBeaconBlockRoot: ethcommon.BytesToHash(buf[0:32]),
		ParentHash:            ethcommon.BytesToHash(buf[32:64]),
		FeeRecipient:          ethcommon.BytesToAddress(buf[64:84]),
		PrevRandao:            ethcommon.BytesToHash(buf[84:116]),
		BlockNumber:           hexutil.Uint64(ssz.UnmarshallUint64(buf[116:124])),
		GasLimit:              hexutil.Uint64(ssz.UnmarshallUint64(buf[124:132])),
		Timestamp:             hexutil.Uint64(ssz.UnmarshallUint64(buf[132:140])),
		BaseFeePerGas:         unmarshalU256(buf[144:176]),
		ExtraData:             bytes.Clone(sections[0]),
	}

	*b = res
	return nil
}

// Diff

func (d *Diff) SizeSSZ() int {
	size := sizeDiffFixed
	for _, tx := range d.Transactions {
		size += bytesPerLengthOffset + len(tx)
	}
	size += len(d.Withdrawals) * sizeWithdrawal
	return size
}

func (d *Diff) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(d)
}

func (d *Diff) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	offset := sizeDiffFixed

	dst = append(dst, d.StateRoot[:]...)
	dst = append(dst, d.ReceiptsRoot[:]...)
	dst = append(dst, d.LogsBloom[:]...)
	dst = ssz.MarshalUint64(dst, uint64(d.GasUsed))
	dst = append(dst, d.BlockHash[:]...)

	dst = ssz.WriteOffset(dst, offset) // transactions
	for _, tx := range d.Transactions {
		offset += bytesPerLengthOffset + len(tx)
	}

	dst = ssz.WriteOffset(dst, offset) // withdrawals

	dst = append(dst, d.WithdrawalsRoot[:]...)

	dst = marshalTransactions(dst, d.Transactions)
	for idx, w := range d.Withdrawals {
		if w == nil {
			return nil, fmtWrap("withdrawals", idx, errNilEntry)
		}
		dst = marshalWithdrawal(dst, w)
	}

	return dst, nil
}

func (d *Diff) UnmarshalSSZ(buf []byte) error {
	sections, err := variableSections("diff", buf, sizeDiffFixed, 360, 364)
	if err != nil {
		return err
	}

	res := Diff{
		StateRoot:       ethcommon.BytesToHash(buf[0:32]),
		ReceiptsRoot:    ethcommon.BytesToHash(buf[32:64]),
		LogsBloom:       ethtypes.BytesToBloom(buf[64:320]),
		GasUsed:         hexutil.Uint64(ssz.UnmarshallUint64(buf[320:328])),
		BlockHash:       ethcommon.BytesToHash(buf[328:360]),
		WithdrawalsRoot: ethcommon.BytesToHash(buf[368:400]),
	}

	if res.Transactions, err = unmarshalTransactions(sections[0]); err != nil {
		return err
	}
	if res.Withdrawals, err = unmarshalWithdrawals(sections[1]); err != nil {
		return err
	}

	*d = res
	return nil
}

func marshalTransactions(dst []byte, txs []hexutil.Bytes) []byte {
	offset := len(txs) * bytesPerLengthOffset
	for _, tx := range txs {
		dst = ssz.WriteOffset(dst, offset)
		offset += len(tx)
	}
	for _, tx := range txs {
		dst = append(dst, tx...)
	}
	return dst
}

func unmarshalTransactions(buf []byte) ([]hexutil.Bytes, error) {
	items, err := dynamicListItems("transactions", buf)
	if err != nil {
		return nil, err
	}
	txs := make([]hexutil.Bytes, 0, len(items))
	for _, item := range items {
		txs = append(txs, bytes.Clone(item))
	}
	return txs, nil
}

// Withdrawal

func marshalWithdrawal(dst []byte, w *ethtypes.Withdrawal) []byte {
	dst = ssz.MarshalUint64(dst, w.Index)
	dst = ssz.MarshalUint64(dst, w.Validator)
	dst = append(dst, w.Address[:]...)
	dst = ssz.MarshalUint64(dst, w.Amount)
	return dst
}

func unmarshalWithdrawals(buf []byte) ([]*ethtypes.Withdrawal, error) {
	if len(buf)%sizeWithdrawal != 0 {
		return nil, errStride("withdrawals", sizeWithdrawal, len(buf))
	}
	withdrawals := make([]*ethtypes.Withdrawal, 0, len(buf)/sizeWithdrawal)
	for pos := 0; pos < len(buf); pos += sizeWithdrawal {
		w := buf[pos : pos+sizeWithdrawal]
		withdrawals = append(withdrawals, &ethtypes.Withdrawal{
			Index:     ssz.UnmarshallUint64(w[0:8]),
			Validator: ssz.UnmarshallUint64(w[8:16]),
			Address:   ethcommon.BytesToAddress(w[16:36]),
			Amount:    ssz.UnmarshallUint64(w[36:44]),
		})
	}
	return withdrawals, nil
}

// Metadata

func (m *Metadata) SizeSSZ() int {
	return sizeMetadataFixed + m.Receipts.SizeSSZ() + m.NewAccountBalances.SizeSSZ()
}

func (m *Metadata) MarshalSSZ() ([]byte, error) {
	return m.MarshalSSZTo(make([]byte, 0, sizeMetadataFixed+m.NewAccountBalances.SizeSSZ()))
}

func (m *Metadata) MarshalSSZTo(buf []byte) ([]byte, error) {
	receipts, err := m.Receipts.MarshalSSZ()
	if err != nil {
		return nil, err
	}

	dst := buf
	dst = ssz.WriteOffset(dst, sizeMetadataFixed)               // receipts
	dst = ssz.WriteOffset(dst, sizeMetadataFixed+len(receipts)) // new account balances
	dst = ssz.MarshalUint64(dst, m.BlockNumber)

	dst = append(dst, receipts...)
	if dst, err = m.NewAccountBalances.MarshalSSZTo(dst); err != nil {
		return nil, err
	}

	return dst, nil
}

func (m *Metadata) UnmarshalSSZ(buf []byte) error {
	sections, err := variableSections("metadata", buf, sizeMetadataFixed, 0, 4)
	if err != nil {
		return err
	}

	res := Metadata{
		BlockNumber: ssz.UnmarshallUint64(buf[8:16]),
	}
	if err := res.Receipts.UnmarshalSSZ(sections[0]); err != nil {
		return err
	}
	if err := res.NewAccountBalances.UnmarshalSSZ(sections[1]); err != nil {
		return err
	}

	*m = res
	return nil
}

// List

func (l List) SizeSSZ() int {
	size := len(l) * bytesPerLengthOffset
	for _, f := range l {
		if f != nil {
			size += f.SizeSSZ()
		}
	}
	return size
}

func (l List) MarshalSSZ() ([]byte, error) {
	return l.MarshalSSZTo(make([]byte, 0))
}

// MarshalSSZTo encodes every flashblock before writing the offset table, so
// that the receipts are JSON-encoded exactly once.
func (l List) MarshalSSZTo(buf []byte) ([]byte, error) {
	items := make([][]byte, 0, len(l))
	for idx, f := range l {
		if f == nil {
			return nil, fmtWrap("flashblocks", idx, errNilEntry)
		}
		item, err := f.MarshalSSZ()
		if err != nil {
			return nil, fmtWrap("flashblocks", idx, err)
		}
		items = append(items, item)
	}

	dst := buf

	offset := len(items) * bytesPerLengthOffset
	for _, item := range items {
		dst = ssz.WriteOffset(dst, offset)
		offset += len(item)
	}
	for _, item := range items {
		dst = append(dst, item...)
	}

	return dst, nil
}

func (l *List) UnmarshalSSZ(buf []byte) error {
	items, err := dynamicListItems("flashblocks", buf)
	if err != nil {
		return err
	}

	res := make(List, 0, len(items))
	for idx, item := range items {
		f := &Flashblock{}
		if err := f.UnmarshalSSZ(item); err != nil {
			return fmtWrap("flashblocks", idx, err)
		}
		res = append(res, f)
	}

	*l = res
	return nil
}
