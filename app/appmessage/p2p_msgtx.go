// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/hashes"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

const (
	// LegacyTxVersion is the last transaction version without a comment.
	LegacyTxVersion int32 = 1

	// CurrentTxVersion is the version of transactions created by this node.
	// Transactions newer than LegacyTxVersion carry a comment.
	CurrentTxVersion int32 = 2

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxTxCommentLength is the maximum length of a transaction comment.
	MaxTxCommentLength = 528

	// MaxScriptSize is the maximum size of a signature or public key script.
	MaxScriptSize = 10000

	// defaultTxInOutAlloc is the default size used for the backing array for
	// transaction inputs and outputs. The array will dynamically grow as needed,
	// but this figure is intended to provide enough space for the number of
	// inputs and outputs in a typical transaction without needing to grow the
	// backing array multiple times.
	defaultTxInOutAlloc = 15

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutpoint.Hash + PreviousOutpoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transactions inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for PkScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transactions outputs that
	// a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1

	// minTxPayload is the minimum payload size for a transaction.
	// Version 4 bytes + Time 4 bytes + Varint number of transaction inputs
	// 1 byte + Varint number of transaction outputs 1 byte + LockTime 4 bytes.
	minTxPayload = 14
)

// Outpoint defines a data type that is used to track previous transaction
// outputs.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutpoint returns a new transaction outpoint with the provided hash and
// index.
func NewOutpoint(hash *chainhash.Hash, index uint32) *Outpoint {
	return &Outpoint{
		Hash:  *hash,
		Index: index,
	}
}

// IsNull returns whether the outpoint references nothing, as the coinbase
// input does.
func (o Outpoint) IsNull() bool {
	return o.Hash == chainhash.Hash{} && o.Index == MaxPrevOutIndex
}

// String returns the Outpoint in the human-readable form "hash:index".
func (o Outpoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint32
}

// NewTxIn returns a new transaction input with the provided previous outpoint
// and signature script with a default sequence of MaxTxInSequenceNum.
func NewTxIn(prevOut *Outpoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutpoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + varBytesSerializeSize(len(t.SignatureScript))
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new transaction output with the provided transaction
// value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// IsEmpty returns whether the output carries neither value nor script. The
// first output of a coinstake transaction is empty.
func (t *TxOut) IsEmpty() bool {
	return t.Value == 0 && len(t.PkScript) == 0
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + varBytesSerializeSize(len(t.PkScript))
}

// MsgTx represents a transaction. Transactions carry their own timestamp,
// which the stake kernel of a proof-of-stake block commits to.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.
type MsgTx struct {
	Version  int32
	Time     uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32

	// Comment is only encoded for versions above LegacyTxVersion.
	Comment string
}

// NewMsgTx returns a new transaction with the given version and time and no
// inputs or outputs.
func NewMsgTx(version int32, time uint32) *MsgTx {
	return &MsgTx{
		Version: version,
		Time:    time,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// IsCoinBase determines whether or not a transaction is a coinbase
// transaction: a single input that references no previous output.
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutpoint.IsNull()
}

// IsCoinStake determines whether or not a transaction is a coinstake
// transaction: it spends a real output and its first output is empty,
// followed by at least one more output.
func (msg *MsgTx) IsCoinStake() bool {
	return len(msg.TxIn) > 0 &&
		!msg.TxIn[0].PreviousOutpoint.IsNull() &&
		len(msg.TxOut) >= 2 &&
		msg.TxOut[0].IsEmpty()
}

// TxHash generates the Hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	writer := hashes.NewDoubleHashWriter()
	err := msg.Serialize(writer)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		Time:     msg.Time,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
		Comment:  msg.Comment,
	}

	for _, oldTxIn := range msg.TxIn {
		var newScript []byte
		if oldTxIn.SignatureScript != nil {
			newScript = make([]byte, len(oldTxIn.SignatureScript))
			copy(newScript, oldTxIn.SignatureScript)
		}
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutpoint: oldTxIn.PreviousOutpoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
		})
	}

	for _, oldTxOut := range msg.TxOut {
		var newScript []byte
		if oldTxOut.PkScript != nil {
			newScript = make([]byte, len(oldTxOut.PkScript))
			copy(newScript, oldTxOut.PkScript)
		}
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: newScript,
		})
	}

	return &newTx
}

// Deserialize decodes a transaction from r into the receiver. The receiver is
// left untouched if decoding fails.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var tx MsgTx
	err := readElements(r, &tx.Version, &tx.Time)
	if err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more input transactions than could possibly fit into a
	// message. It would be possible to cause memory exhaustion and panics
	// without a sane upper bound on this count.
	if count > uint64(maxTxInPerMessage) {
		str := fmt.Sprintf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxInPerMessage)
		return messageError("MsgTx.Deserialize", str)
	}

	tx.TxIn = make([]*TxIn, count)
	for i := range tx.TxIn {
		ti := &TxIn{}
		err = readTxIn(r, ti)
		if err != nil {
			return err
		}
		tx.TxIn[i] = ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}

	if count > uint64(maxTxOutPerMessage) {
		str := fmt.Sprintf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxOutPerMessage)
		return messageError("MsgTx.Deserialize", str)
	}

	tx.TxOut = make([]*TxOut, count)
	for i := range tx.TxOut {
		to := &TxOut{}
		err = readTxOut(r, to)
		if err != nil {
			return err
		}
		tx.TxOut[i] = to
	}

	err = ReadElement(r, &tx.LockTime)
	if err != nil {
		return err
	}

	if tx.Version > LegacyTxVersion {
		tx.Comment, err = ReadVarString(r, MaxTxCommentLength, "transaction comment")
		if err != nil {
			return err
		}
	}

	*msg = tx
	return nil
}

// Serialize encodes the transaction to w.
func (msg *MsgTx) Serialize(w io.Writer) error {
	err := writeElements(w, msg.Version, msg.Time)
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		err = writeTxIn(w, ti)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		err = writeTxOut(w, to)
		if err != nil {
			return err
		}
	}

	err = WriteElement(w, msg.LockTime)
	if err != nil {
		return err
	}

	if msg.Version > LegacyTxVersion {
		return WriteVarString(w, msg.Comment)
	}
	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + Time 4 bytes + LockTime 4 bytes + Serialized varint
	// size for the number of transaction inputs and outputs.
	n := 12 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	if msg.Version > LegacyTxVersion {
		n += varBytesSerializeSize(len(msg.Comment))
	}
	return n
}

// Bytes returns the serialized transaction.
func (msg *MsgTx) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	err := msg.Serialize(buf)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}

func readTxIn(r io.Reader, ti *TxIn) error {
	err := readElements(r, &ti.PreviousOutpoint.Hash, &ti.PreviousOutpoint.Index)
	if err != nil {
		return err
	}

	ti.SignatureScript, err = ReadVarBytes(r, MaxScriptSize, "transaction input signature script")
	if err != nil {
		return err
	}

	return ReadElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	err := writeElements(w, &ti.PreviousOutpoint.Hash, ti.PreviousOutpoint.Index)
	if err != nil {
		return err
	}

	err = WriteVarBytes(w, ti.SignatureScript)
	if err != nil {
		return err
	}

	return WriteElement(w, ti.Sequence)
}

func readTxOut(r io.Reader, to *TxOut) error {
	err := ReadElement(r, &to.Value)
	if err != nil {
		return err
	}

	to.PkScript, err = ReadVarBytes(r, MaxScriptSize, "transaction output public key script")
	return err
}

func writeTxOut(w io.Writer, to *TxOut) error {
	err := WriteElement(w, to.Value)
	if err != nil {
		return err
	}

	return WriteVarBytes(w, to.PkScript)
}
