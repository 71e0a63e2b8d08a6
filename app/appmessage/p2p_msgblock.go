// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// defaultTransactionAlloc is the default size used for the backing array
// for transactions. The transaction array will dynamically grow as needed, but
// this figure is intended to provide enough space for the number of
// transactions in the vast majority of blocks without needing to grow the
// backing array multiple times.
const defaultTransactionAlloc = 2048

// MaxTxPerBlock is the maximum number of transactions that could
// possibly fit into a block.
const MaxTxPerBlock = (MaxBlockSerializedSize / minTxPayload) + 1

// MaxBlockSignatureSize is the maximum size of a block signature.
const MaxBlockSignatureSize = 520

// BlockSigner produces the signature of a block. Signing keys live with the
// wallet, outside of this package.
type BlockSigner interface {
	SignBlock(block *MsgBlock, fees btcutil.Amount) ([]byte, error)
}

// MsgBlock represents a block: a header, the transactions it commits to and,
// from LegacyBlockVersion3 on, a signature by the block's producer.
//
// MsgBlock holds consensus data only. Merkle trees and validation results
// derived from it are cached by block hash elsewhere so that a block can be
// shared between goroutines without synchronization.
type MsgBlock struct {
	Header         MsgBlockHeader
	Transactions   []*MsgTx
	BlockSignature []byte
}

// NewMsgBlock returns a new block with the given header and no transactions.
func NewMsgBlock(blockHeader *MsgBlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *blockHeader,
		Transactions: make([]*MsgTx, 0, defaultTransactionAlloc),
	}
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// ClearTransactions removes all transactions from the message.
func (msg *MsgBlock) ClearTransactions() {
	msg.Transactions = make([]*MsgTx, 0, defaultTransactionAlloc)
}

// SetNull resets the block to an empty, null block.
func (msg *MsgBlock) SetNull() {
	msg.Header.SetNull()
	msg.Transactions = nil
	msg.BlockSignature = nil
}

// BlockHeader returns a copy of the block header, without the body.
func (msg *MsgBlock) BlockHeader() MsgBlockHeader {
	return msg.Header
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// PoWHash computes the proof-of-work hash for this block.
func (msg *MsgBlock) PoWHash() chainhash.Hash {
	return msg.Header.PoWHash()
}

// IsProofOfStake returns whether the block is a proof-of-stake block: its
// second transaction is a coinstake.
func (msg *MsgBlock) IsProofOfStake() bool {
	return len(msg.Transactions) > 1 && msg.Transactions[1].IsCoinStake()
}

// IsProofOfWork returns whether the block is a proof-of-work block.
func (msg *MsgBlock) IsProofOfWork() bool {
	return !msg.IsProofOfStake()
}

// ProofOfStakeKernel returns the output staked by a proof-of-stake block and
// the coinstake timestamp. ok is false for proof-of-work blocks; there is no
// zero-valued kernel.
func (msg *MsgBlock) ProofOfStakeKernel() (kernel Outpoint, time uint32, ok bool) {
	if !msg.IsProofOfStake() {
		return Outpoint{}, 0, false
	}
	coinStake := msg.Transactions[1]
	return coinStake.TxIn[0].PreviousOutpoint, coinStake.Time, true
}

// TxHashes returns the hashes of the block's transactions, in block order.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashList := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.TxHash())
	}
	return hashList
}

// Sign asks signer for the block signature and stores it. The current
// signature is kept if signing fails.
func (msg *MsgBlock) Sign(signer BlockSigner, fees btcutil.Amount) error {
	signature, err := signer.SignBlock(msg, fees)
	if err != nil {
		return errors.Wrapf(err, "failed signing block %s", msg.BlockHash())
	}
	msg.BlockSignature = signature
	return nil
}

// Copy creates a deep copy of the block.
func (msg *MsgBlock) Copy() *MsgBlock {
	block := &MsgBlock{
		Header:       msg.Header,
		Transactions: make([]*MsgTx, len(msg.Transactions)),
	}
	for i, tx := range msg.Transactions {
		block.Transactions[i] = tx.Copy()
	}
	if msg.BlockSignature != nil {
		block.BlockSignature = make([]byte, len(msg.BlockSignature))
		copy(block.BlockSignature, msg.BlockSignature)
	}
	return block
}

// hasBody returns whether the given encoding of the block carries the
// transactions. Header-only encodings of blocks older than
// LegacyBlockVersion3 stop after the header. Newer blocks keep the
// transactions right behind the header in every encoding, since stored
// transaction positions are computed from that offset.
func (msg *MsgBlock) hasBody(encoding BlockEncoding) bool {
	return encoding != BlockEncodingHeaderOnly || msg.Header.Version >= LegacyBlockVersion3
}

// hasSignature returns whether the given encoding of the block carries the
// block signature.
func (msg *MsgBlock) hasSignature(encoding BlockEncoding) bool {
	return encoding == BlockEncodingFull && msg.Header.Version >= LegacyBlockVersion3
}

// Decode decodes r into the receiver using the given encoding. Decoding is all
// or nothing: the receiver is left untouched if it fails. A header-only
// encoding of a block older than LegacyBlockVersion3 yields a block without
// transactions or signature.
func (msg *MsgBlock) Decode(r io.Reader, encoding BlockEncoding) error {
	var block MsgBlock
	err := readBlockHeader(r, &block.Header)
	if err != nil {
		return err
	}

	if !block.hasBody(encoding) {
		block.Transactions = []*MsgTx{}
		block.BlockSignature = []byte{}
		*msg = block
		return nil
	}

	txCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more transactions than could possibly fit into a block.
	// It would be possible to cause memory exhaustion and panics without
	// a sane upper bound on this count.
	if txCount > MaxTxPerBlock {
		str := fmt.Sprintf("too many transactions to fit into a block "+
			"[count %d, max %d]", txCount, MaxTxPerBlock)
		return messageError("MsgBlock.Decode", str)
	}

	block.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := MsgTx{}
		err := tx.Deserialize(r)
		if err != nil {
			return err
		}
		block.Transactions = append(block.Transactions, &tx)
	}

	if block.hasSignature(encoding) {
		block.BlockSignature, err = ReadVarBytes(r, MaxBlockSignatureSize, "block signature")
		if err != nil {
			return err
		}
	} else {
		block.BlockSignature = []byte{}
	}

	*msg = block
	return nil
}

// Encode encodes the receiver to w using the given encoding.
func (msg *MsgBlock) Encode(w io.Writer, encoding BlockEncoding) error {
	err := writeBlockHeader(w, &msg.Header)
	if err != nil {
		return err
	}

	if !msg.hasBody(encoding) {
		return nil
	}

	err = WriteVarInt(w, uint64(len(msg.Transactions)))
	if err != nil {
		return err
	}

	for _, tx := range msg.Transactions {
		err = tx.Serialize(w)
		if err != nil {
			return err
		}
	}

	if msg.hasSignature(encoding) {
		return WriteVarBytes(w, msg.BlockSignature)
	}
	return nil
}

// Deserialize decodes a fully encoded block from r into the receiver.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	return msg.Decode(r, BlockEncodingFull)
}

// Serialize encodes the full block to w.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	return msg.Encode(w, BlockEncodingFull)
}

// SerializeSize returns the number of bytes it would take to encode the
// block using the given encoding.
func (msg *MsgBlock) SerializeSize(encoding BlockEncoding) int {
	n := msg.Header.SerializeSize()
	if !msg.hasBody(encoding) {
		return n
	}

	n += VarIntSerializeSize(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		n += tx.SerializeSize()
	}

	if msg.hasSignature(encoding) {
		n += varBytesSerializeSize(len(msg.BlockSignature))
	}
	return n
}

// Bytes returns the block encoded with the given encoding.
func (msg *MsgBlock) Bytes(encoding BlockEncoding) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize(encoding)))
	err := msg.Encode(buf, encoding)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}
