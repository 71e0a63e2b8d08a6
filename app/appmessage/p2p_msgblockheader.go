// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/hashes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// BlockHeaderLen is the number of bytes of a serialized block header.
// Version 4 bytes + PrevBlock hash + MerkleRoot hash + Timestamp 4 bytes +
// Bits 4 bytes + Nonce 4 bytes.
const BlockHeaderLen = 16 + 2*chainhash.HashSize

// MsgBlockHeader defines information about a block and is used in the
// block (MsgBlock) message. Every block version shares this layout.
type MsgBlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the chain. All zeros for the
	// genesis block.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created, in seconds since the unix epoch.
	Timestamp uint32

	// Difficulty target for the block, in compact form. A zero value marks
	// the header as null.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// PastMedianTimeSource provides the median time of the blocks preceding a
// new block, as computed by chain state.
type PastMedianTimeSource interface {
	PastMedianTime() int64
}

// NewBlockHeader returns a new MsgBlockHeader using the provided version,
// previous block hash, merkle root hash, timestamp, difficulty bits, and
// nonce.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	timestamp uint32, bits uint32, nonce uint32) *MsgBlockHeader {

	return &MsgBlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      nonce,
	}
}

// IsNull returns whether the header is unset. Bits is the only field that is
// never legitimately zero.
func (h *MsgBlockHeader) IsNull() bool {
	return h.Bits == 0
}

// SetNull resets every field of the header.
func (h *MsgBlockHeader) SetNull() {
	*h = MsgBlockHeader{}
}

// BlockHash computes the block identifier hash for the given block header.
func (h *MsgBlockHeader) BlockHash() chainhash.Hash {
	writer := hashes.NewDoubleHashWriter()
	err := writeBlockHeader(writer, h)
	if err != nil {
		// The writer is a hash digest, which never fails, and every field
		// has an encoding.
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// PoWHash computes the proof-of-work hash for the given block header.
func (h *MsgBlockHeader) PoWHash() chainhash.Hash {
	return hashes.ProofOfWorkHash(h.headerBytes())
}

// StakeEntropyBit returns the entropy bit the block contributes to the stake
// modifier: the lowest bit of the block hash.
func (h *MsgBlockHeader) StakeEntropyBit() uint32 {
	blockHash := h.BlockHash()
	return uint32(binary.LittleEndian.Uint64(blockHash[:8]) & 1)
}

// BlockTime returns the header timestamp as a unix time.
func (h *MsgBlockHeader) BlockTime() int64 {
	return int64(h.Timestamp)
}

// UpdateTime moves the timestamp forward to the later of one second past the
// previous blocks' median time and adjustedTime, capped at the largest
// timestamp a header can hold. The timestamp never moves backwards. The
// returned value is the change applied, which is negative when the current
// timestamp was already later.
func (h *MsgBlockHeader) UpdateTime(prev PastMedianTimeSource, adjustedTime int64) int64 {
	oldTime := h.BlockTime()
	newTime := int64(math.MaxUint32)
	if medianTime := prev.PastMedianTime(); medianTime < newTime {
		newTime = medianTime + 1
	}
	if adjustedTime > newTime {
		newTime = adjustedTime
	}
	if newTime > math.MaxUint32 {
		newTime = math.MaxUint32
	}

	if oldTime < newTime {
		h.Timestamp = uint32(newTime)
	}
	return newTime - oldTime
}

// Deserialize decodes a block header from r into the receiver. The receiver
// is left untouched if decoding fails.
func (h *MsgBlockHeader) Deserialize(r io.Reader) error {
	var header MsgBlockHeader
	err := readBlockHeader(r, &header)
	if err != nil {
		return err
	}
	*h = header
	return nil
}

// Serialize encodes the block header to w.
func (h *MsgBlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// SerializeSize returns the number of bytes it would take to serialize the
// block header.
func (h *MsgBlockHeader) SerializeSize() int {
	return BlockHeaderLen
}

// String returns a human-readable description of the header.
func (h *MsgBlockHeader) String() string {
	return fmt.Sprintf("MsgBlockHeader(hash=%s, ver=%d, hashPrevBlock=%s, hashMerkleRoot=%s, nTime=%d, nBits=%08x, nNonce=%d)",
		h.BlockHash(), h.Version, h.PrevBlock, h.MerkleRoot, h.Timestamp, h.Bits, h.Nonce)
}

func (h *MsgBlockHeader) headerBytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderLen))
	err := writeBlockHeader(buf, h)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *MsgBlockHeader) error {
	return readElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		&bh.Timestamp, &bh.Bits, &bh.Nonce)
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *MsgBlockHeader) error {
	return writeElements(w, bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		bh.Timestamp, bh.Bits, bh.Nonce)
}
