package flashblock

import (
	"github.com/ethereum/go-ethereum/beacon/engine"
)

const sizePayloadID = 8

// marshalPayloadID appends the 8 raw bytes of the payload id.
func marshalPayloadID(dst []byte, id engine.PayloadID) []byte {
	return append(dst, id[:]...)
}

func unmarshalPayloadID(buf []byte) (engine.PayloadID, error) {
	if len(buf) != sizePayloadID {
		return engine.PayloadID{}, errFixedSize("payload_id", sizePayloadID, len(buf))
	}
	var id engine.PayloadID
	copy(id[:], buf)
	return id, nil
}
