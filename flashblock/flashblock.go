// Package flashblock models the incremental block-construction updates emitted
// by the flashblocks websocket feed, together with their JSON and SSZ encodings.
package flashblock

import (
	"github.com/ethereum/go-ethereum/beacon/engine"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Flashblock is a single update in the sequence of flashblocks that together
// build one block. All flashblocks of one block share the payload id; the
// index is expected (but not enforced) to increase.
type Flashblock struct {
	PayloadID engine.PayloadID `json:"payload_id"`
	Index     uint64           `json:"index"`
	Base      *Base            `json:"base,omitempty"`
	Diff      Diff             `json:"diff"`
	Metadata  Metadata         `json:"metadata"`
}

// Base carries the header fields that are fixed when the block construction
// starts. By convention only the first flashblock of a block has it.
type Base struct {
	ParentBeaconBlockRoot ethcommon.Hash    `json:"parent_beacon_block_root"`
	ParentHash            ethcommon.Hash    `json:"parent_hash"`
	FeeRecipient          ethcommon.Address `json:"fee_recipient"`
	PrevRandao            ethcommon.Hash    `json:"prev_randao"`
	BlockNumber           hexutil.Uint64    `json:"block_number"`
	GasLimit              hexutil.Uint64    `json:"gas_limit"`
	Timestamp             hexutil.Uint64    `json:"timestamp"`
	ExtraData             hexutil.Bytes     `json:"extra_data"`
	BaseFeePerGas         U256              `json:"base_fee_per_gas"`
}

// Diff carries the portion of the execution payload that is re-sent with
// every flashblock.
type Diff struct {
	StateRoot       ethcommon.Hash         `json:"state_root"`
	ReceiptsRoot    ethcommon.Hash         `json:"receipts_root"`
	LogsBloom       ethtypes.Bloom         `json:"logs_bloom"`
	GasUsed         hexutil.Uint64         `json:"gas_used"`
	BlockHash       ethcommon.Hash         `json:"block_hash"`
	Transactions    []hexutil.Bytes        `json:"transactions"`
	Withdrawals     []*ethtypes.Withdrawal `json:"withdrawals"`
	WithdrawalsRoot ethcommon.Hash         `json:"withdrawals_root"`
}

// Metadata carries execution results that are not part of the block header.
type Metadata struct {
	Receipts           Receipts `json:"receipts"`
	NewAccountBalances Balances `json:"new_account_balances"`
	BlockNumber        uint64   `json:"block_number"`
}

// List is an ordered sequence of flashblocks, as gathered from the feed or
// loaded from a snapshot.
type List []*Flashblock
