package flashblock

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/beacon/engine"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/goccy/go-json"
)

var (
	errMissingField = errors.New("missing required field")
	errNullEntry    = errors.New("null entry")
)

func (f *Flashblock) UnmarshalJSON(input []byte) error {
	var dec struct {
		PayloadID *engine.PayloadID `json:"payload_id"`
		Index     *uint64           `json:"index"`
		Base      *Base             `json:"base"`
		Diff      *Diff             `json:"diff"`
		Metadata  *Metadata         `json:"metadata"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	switch {
	case dec.PayloadID == nil:
		return fmt.Errorf("%w: payload_id", errMissingField)
	case dec.Index == nil:
		return fmt.Errorf("%w: index", errMissingField)
	case dec.Diff == nil:
		return fmt.Errorf("%w: diff", errMissingField)
	case dec.Metadata == nil:
		return fmt.Errorf("%w: metadata", errMissingField)
	}

	*f = Flashblock{
		PayloadID: *dec.PayloadID,
		Index:     *dec.Index,
		Base:      dec.Base,
		Diff:      *dec.Diff,
		Metadata:  *dec.Metadata,
	}
	return nil
}

func (b *Base) UnmarshalJSON(input []byte) error {
	var dec struct {
		ParentBeaconBlockRoot *ethcommon.Hash    `json:"parent_beacon_block_root"`
		ParentHash            *ethcommon.Hash    `json:"parent_hash"`
		FeeRecipient          *ethcommon.Address `json:"fee_recipient"`
		PrevRandao            *ethcommon.Hash    `json:"prev_randao"`
		BlockNumber           *hexutil.Uint64    `json:"block_number"`
		GasLimit              *hexutil.Uint64    `json:"gas_limit"`
		Timestamp             *hexutil.Uint64    `json:"timestamp"`
		ExtraData             *hexutil.Bytes     `json:"extra_data"`
		BaseFeePerGas         *U256              `json:"base_fee_per_gas"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	switch {
	case dec.ParentBeaconBlockRoot == nil:
		return fmt.Errorf("%w: base.parent_beacon_block_root", errMissingField)
	case dec.ParentHash == nil:
		return fmt.Errorf("%w: base.parent_hash", errMissingField)
	case dec.FeeRecipient == nil:
		return fmt.Errorf("%w: base.fee_recipient", errMissingField)
	case dec.PrevRandao == nil:
		return fmt.Errorf("%w: base.prev_randao", errMissingField)
	case dec.BlockNumber == nil:
		return fmt.Errorf("%w: base.block_number", errMissingField)
	case dec.GasLimit == nil:
		return fmt.Errorf("%w: base.gas_limit", errMissingField)
	case dec.Timestamp == nil:
		return fmt.Errorf("%w: base.timestamp", errMissingField)
	case dec.ExtraData == nil:
		return fmt.Errorf("%w: base.extra_data", errMissingField)
	case dec.BaseFeePerGas == nil:
		return fmt.Errorf("%w: base.base_fee_per_gas", errMissingField)
	}

	*b = Base{
		ParentBeaconBlockRoot: *dec.ParentBeaconBlockRoot,
		ParentHash:            *dec.ParentHash,
		FeeRecipient:          *dec.FeeRecipient,
		PrevRandao:            *dec.PrevRandao,
		BlockNumber:           *dec.BlockNumber,
		GasLimit:              *dec.GasLimit,
		Timestamp:             *dec.Timestamp,
		ExtraData:             *dec.ExtraData,
		BaseFeePerGas:         *dec.BaseFeePerGas,
	}
	return nil
}

func (d *Diff) UnmarshalJSON(input []byte) error {
	var dec struct {
		StateRoot       *ethcommon.Hash         `json:"state_root"`
		ReceiptsRoot    *ethcommon.Hash         `json:"receipts_root"`
		LogsBloom       *ethtypes.Bloom         `json:"logs_bloom"`
		GasUsed         *hexutil.Uint64         `json:"gas_used"`
		BlockHash       *ethcommon.Hash         `json:"block_hash"`
		Transactions    *[]hexutil.Bytes        `json:"transactions"`
		Withdrawals     *[]*ethtypes.Withdrawal `json:"withdrawals"`
		WithdrawalsRoot *ethcommon.Hash         `json:"withdrawals_root"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	switch {
	case dec.StateRoot == nil:
		return fmt.Errorf("%w: diff.state_root", errMissingField)
	case dec.ReceiptsRoot == nil:
		return fmt.Errorf("%w: diff.receipts_root", errMissingField)
	case dec.LogsBloom == nil:
		return fmt.Errorf("%w: diff.logs_bloom", errMissingField)
	case dec.GasUsed == nil:
		return fmt.Errorf("%w: diff.gas_used", errMissingField)
	case dec.BlockHash == nil:
		return fmt.Errorf("%w: diff.block_hash", errMissingField)
	case dec.Transactions == nil:
		return fmt.Errorf("%w: diff.transactions", errMissingField)
	case dec.Withdrawals == nil:
		return fmt.Errorf("%w: diff.withdrawals", errMissingField)
	case dec.WithdrawalsRoot == nil:
		return fmt.Errorf("%w: diff.withdrawals_root", errMissingField)
	}

	for idx, w := range *dec.Withdrawals {
		if w == nil {
			return fmt.Errorf("%w: diff.withdrawals[%d]", errNullEntry, idx)
		}
	}

	*d = Diff{
		StateRoot:       *dec.StateRoot,
		ReceiptsRoot:    *dec.ReceiptsRoot,
		LogsBloom:       *dec.LogsBloom,
		GasUsed:         *dec.GasUsed,
		BlockHash:       *dec.BlockHash,
		Transactions:    *dec.Transactions,
		Withdrawals:     *dec.Withdrawals,
		WithdrawalsRoot: *dec.WithdrawalsRoot,
	}
	return nil
}

func (m *Metadata) UnmarshalJSON(input []byte) error {
	var dec struct {
		Receipts           *Receipts `json:"receipts"`
		NewAccountBalances *Balances `json:"new_account_balances"`
		BlockNumber        *uint64   `json:"block_number"`
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	switch {
	case dec.Receipts == nil || *dec.Receipts == nil:
		return fmt.Errorf("%w: metadata.receipts", errMissingField)
	case dec.NewAccountBalances == nil || *dec.NewAccountBalances == nil:
		return fmt.Errorf("%w: metadata.new_account_balances", errMissingField)
	case dec.BlockNumber == nil:
		return fmt.Errorf("%w: metadata.block_number", errMissingField)
	}

	for hash, receipt := range *dec.Receipts {
		if receipt == nil {
			return fmt.Errorf("%w: metadata.receipts[%s]", errNullEntry, hash)
		}
	}

	*m = Metadata{
		Receipts:           *dec.Receipts,
		NewAccountBalances: *dec.NewAccountBalances,
		BlockNumber:        *dec.BlockNumber,
	}
	return nil
}

func (l *List) UnmarshalJSON(input []byte) error {
	var dec []*Flashblock
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec == nil {
		return fmt.Errorf("%w: flashblocks", errMissingField)
	}

	for idx, f := range dec {
		if f == nil {
			return fmt.Errorf("%w: flashblocks[%d]", errNullEntry, idx)
		}
	}

	*l = dec
	return nil
}
