package appmessage

import (
	"fmt"
	"io"

	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/hashes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes allowed
// per message.
const MaxBlockLocatorsPerMsg = 500

// MsgBlockLocator describes a position in the chain to another node: a list
// of block hashes, most recent first and increasingly sparse towards the
// genesis block, so the other node can find the most recent common block
// even if the chains have forked.
type MsgBlockLocator struct {
	BlockLocatorHashes []*chainhash.Hash
}

// NewMsgBlockLocator returns a new block locator message with the given
// hashes.
func NewMsgBlockLocator(locatorHashes []*chainhash.Hash) *MsgBlockLocator {
	return &MsgBlockLocator{
		BlockLocatorHashes: locatorHashes,
	}
}

// IsNull returns whether the locator holds no hashes.
func (msg *MsgBlockLocator) IsNull() bool {
	return len(msg.BlockLocatorHashes) == 0
}

// SetNull removes every hash from the locator.
func (msg *MsgBlockLocator) SetNull() {
	msg.BlockLocatorHashes = nil
}

// Encode encodes the locator to w. The protocol version pver prefixes the
// hashes unless the locator is only being hashed.
func (msg *MsgBlockLocator) Encode(w io.Writer, pver int32, context EncodingContext) error {
	if context != EncodingContextHash {
		err := WriteElement(w, pver)
		if err != nil {
			return err
		}
	}

	err := WriteVarInt(w, uint64(len(msg.BlockLocatorHashes)))
	if err != nil {
		return err
	}

	for _, hash := range msg.BlockLocatorHashes {
		err = WriteElement(w, hash)
		if err != nil {
			return err
		}
	}
	return nil
}

// Decode decodes r into the receiver and returns the protocol version the
// locator was encoded with, which is zero in the hash context. The receiver
// is left untouched if decoding fails.
func (msg *MsgBlockLocator) Decode(r io.Reader, context EncodingContext) (int32, error) {
	var pver int32
	if context != EncodingContextHash {
		err := ReadElement(r, &pver)
		if err != nil {
			return 0, err
		}
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}

	// Limit to max block locator hashes per message.
	if count > MaxBlockLocatorsPerMsg {
		str := fmt.Sprintf("too many block locator hashes for message "+
			"[count %d, max %d]", count, MaxBlockLocatorsPerMsg)
		return 0, messageError("MsgBlockLocator.Decode", str)
	}

	locatorHashes := make([]*chainhash.Hash, count)
	for i := range locatorHashes {
		hash := &chainhash.Hash{}
		err := ReadElement(r, hash)
		if err != nil {
			return 0, err
		}
		locatorHashes[i] = hash
	}

	msg.BlockLocatorHashes = locatorHashes
	return pver, nil
}

// SerializeSize returns the number of bytes it would take to encode the
// locator in the given context.
func (msg *MsgBlockLocator) SerializeSize(context EncodingContext) int {
	n := VarIntSerializeSize(uint64(len(msg.BlockLocatorHashes))) +
		len(msg.BlockLocatorHashes)*chainhash.HashSize
	if context != EncodingContextHash {
		n += 4
	}
	return n
}

// Hash returns the identity hash of the locator, computed over its hash
// context encoding.
func (msg *MsgBlockLocator) Hash() chainhash.Hash {
	writer := hashes.NewDoubleHashWriter()
	err := msg.Encode(writer, 0, EncodingContextHash)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}
