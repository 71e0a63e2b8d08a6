// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// payToPubKeyScript returns a <push pubkey> OP_CHECKSIG script.
func payToPubKeyScript(pubKey []byte) []byte {
	script := make([]byte, 0, len(pubKey)+2)
	script = append(script, byte(len(pubKey)))
	script = append(script, pubKey...)
	return append(script, 0xac)
}

// testCoinBaseTx returns a coinbase transaction paying to pkScript.
func testCoinBaseTx(time uint32, pkScript []byte) *MsgTx {
	tx := NewMsgTx(CurrentTxVersion, time)
	tx.AddTxIn(NewTxIn(NewOutpoint(&chainhash.Hash{}, MaxPrevOutIndex),
		[]byte{0x04, 0xff, 0xff, 0x00, 0x1d, 0x01, 0x04}))
	tx.AddTxOut(NewTxOut(50*100000000, pkScript))
	tx.Comment = "solar"
	return tx
}

// testCoinStakeTx returns a coinstake transaction spending kernel and paying
// the stake back to pkScript.
func testCoinStakeTx(time uint32, kernel *Outpoint, pkScript []byte) *MsgTx {
	tx := NewMsgTx(CurrentTxVersion, time)
	tx.AddTxIn(NewTxIn(kernel, []byte{0x47, 0x30, 0x44}))
	tx.AddTxOut(NewTxOut(0, []byte{}))
	tx.AddTxOut(NewTxOut(1000*100000000, pkScript))
	return tx
}

// TestTx tests the MsgTx API.
func TestTx(t *testing.T) {
	tx := NewMsgTx(CurrentTxVersion, 1400000000)
	if tx.Version != CurrentTxVersion || tx.Time != 1400000000 {
		t.Fatalf("NewMsgTx: unexpected fields %s", spew.Sdump(tx))
	}
	if len(tx.TxIn) != 0 || len(tx.TxOut) != 0 {
		t.Fatalf("NewMsgTx: transaction not empty")
	}

	prevOutHash := chainhash.Hash{0x01}
	prevOut := NewOutpoint(&prevOutHash, 1)
	if prevOut.Hash != prevOutHash || prevOut.Index != 1 {
		t.Fatalf("NewOutpoint: unexpected outpoint %s", prevOut)
	}
	if prevOut.IsNull() {
		t.Fatalf("IsNull: outpoint %s reported as null", prevOut)
	}
	wantString := prevOutHash.String() + ":1"
	if prevOut.String() != wantString {
		t.Fatalf("String: got %s, want %s", prevOut, wantString)
	}

	txIn := NewTxIn(prevOut, []byte{0x04, 0x31})
	if txIn.Sequence != MaxTxInSequenceNum {
		t.Fatalf("NewTxIn: wrong sequence %d", txIn.Sequence)
	}
	tx.AddTxIn(txIn)
	tx.AddTxOut(NewTxOut(5000000000, []byte{0x51}))
	if len(tx.TxIn) != 1 || len(tx.TxOut) != 1 {
		t.Fatalf("AddTxIn/AddTxOut: unexpected transaction %s", spew.Sdump(tx))
	}
}

// TestTxKinds tests coinbase and coinstake detection.
func TestTxKinds(t *testing.T) {
	kernel := NewOutpoint(&chainhash.Hash{0xaa}, 3)
	pkScript := payToPubKeyScript(bytes.Repeat([]byte{0x02}, 33))

	tests := []struct {
		name      string
		tx        *MsgTx
		coinBase  bool
		coinStake bool
	}{
		{
			name:     "coinbase",
			tx:       testCoinBaseTx(1, pkScript),
			coinBase: true,
		},
		{
			name:      "coinstake",
			tx:        testCoinStakeTx(1, kernel, pkScript),
			coinStake: true,
		},
		{
			name: "empty",
			tx:   NewMsgTx(CurrentTxVersion, 1),
		},
		{
			name: "coinstake with a single output",
			tx: func() *MsgTx {
				tx := testCoinStakeTx(1, kernel, pkScript)
				tx.TxOut = tx.TxOut[:1]
				return tx
			}(),
		},
		{
			name: "coinstake with a non-empty first output",
			tx: func() *MsgTx {
				tx := testCoinStakeTx(1, kernel, pkScript)
				tx.TxOut[0].Value = 1
				return tx
			}(),
		},
		{
			name: "coinbase with two inputs",
			tx: func() *MsgTx {
				tx := testCoinBaseTx(1, pkScript)
				tx.AddTxIn(NewTxIn(kernel, nil))
				return tx
			}(),
		},
	}

	for _, test := range tests {
		if got := test.tx.IsCoinBase(); got != test.coinBase {
			t.Errorf("%s: IsCoinBase got %t, want %t", test.name, got, test.coinBase)
		}
		if got := test.tx.IsCoinStake(); got != test.coinStake {
			t.Errorf("%s: IsCoinStake got %t, want %t", test.name, got, test.coinStake)
		}
	}
}

// TestTxSerialize tests MsgTx serialize and deserialize, including the comment
// that only follows newer transaction versions.
func TestTxSerialize(t *testing.T) {
	legacyTx := NewMsgTx(LegacyTxVersion, 0x5a0b0c0d)
	legacyTx.AddTxIn(NewTxIn(NewOutpoint(&chainhash.Hash{0x01}, 0), []byte{0x51}))
	legacyTx.AddTxOut(NewTxOut(0x0102, []byte{0x52}))

	legacyEncoded := []byte{
		0x01, 0x00, 0x00, 0x00, // Version
		0x0d, 0x0c, 0x0b, 0x5a, // Time
		0x01, // Varint for number of input transactions
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Previous output hash
		0x00, 0x00, 0x00, 0x00, // Previous output index
		0x01, 0x51, // Signature script
		0xff, 0xff, 0xff, 0xff, // Sequence
		0x01,                                           // Varint for number of output transactions
		0x02, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Value
		0x01, 0x52, // Public key script
		0x00, 0x00, 0x00, 0x00, // Lock time
	}

	commentTx := legacyTx.Copy()
	commentTx.Version = CurrentTxVersion
	commentTx.Comment = "hi"
	commentEncoded := append([]byte{0x02}, legacyEncoded[1:]...)
	commentEncoded = append(commentEncoded, 0x02, 'h', 'i')

	tests := []struct {
		name string
		in   *MsgTx
		buf  []byte
	}{
		{"legacy version", legacyTx, legacyEncoded},
		{"version with comment", commentTx, commentEncoded},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		err := test.in.Serialize(&buf)
		if err != nil {
			t.Errorf("%s: Serialize error %v", test.name, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("%s: Serialize\n got: %s want: %s", test.name,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}
		if size := test.in.SerializeSize(); size != len(test.buf) {
			t.Errorf("%s: SerializeSize got %d, want %d", test.name, size, len(test.buf))
		}
		if !bytes.Equal(test.in.Bytes(), test.buf) {
			t.Errorf("%s: Bytes does not match Serialize", test.name)
		}

		var tx MsgTx
		err = tx.Deserialize(bytes.NewReader(test.buf))
		if err != nil {
			t.Errorf("%s: Deserialize error %v", test.name, err)
			continue
		}
		if !reflect.DeepEqual(&tx, test.in) {
			t.Errorf("%s: Deserialize\n got: %s want: %s", test.name,
				spew.Sdump(&tx), spew.Sdump(test.in))
		}
	}

	if legacyTx.TxHash() == commentTx.TxHash() {
		t.Errorf("TxHash: the comment does not change the transaction hash")
	}
}

// TestTxDeserializeErrors ensures truncated and oversized transactions fail
// to decode without touching the receiver.
func TestTxDeserializeErrors(t *testing.T) {
	pkScript := payToPubKeyScript(bytes.Repeat([]byte{0x03}, 33))
	encoded := testCoinBaseTx(7, pkScript).Bytes()

	for size := 0; size < len(encoded); size++ {
		tx := NewMsgTx(LegacyTxVersion, 99)
		before := spew.Sdump(tx)
		err := tx.Deserialize(newFixedReader(size, encoded))
		if err == nil {
			t.Errorf("Deserialize of %d bytes: expected an error", size)
			continue
		}
		if !IsMalformedError(err) {
			t.Errorf("Deserialize of %d bytes: unexpected error %v", size, err)
		}
		if spew.Sdump(tx) != before {
			t.Errorf("Deserialize of %d bytes modified the transaction", size)
		}
	}

	longComment := NewMsgTx(CurrentTxVersion, 1)
	longComment.Comment = string(make([]byte, MaxTxCommentLength+1))
	var tx MsgTx
	err := tx.Deserialize(bytes.NewReader(longComment.Bytes()))
	var msgErr *MessageError
	if !errors.As(err, &msgErr) {
		t.Fatalf("Deserialize: expected a MessageError for a long comment, got %v", err)
	}
}

// TestTxCopy tests that copies do not share memory with the original.
func TestTxCopy(t *testing.T) {
	pkScript := payToPubKeyScript(bytes.Repeat([]byte{0x02}, 33))
	tx := testCoinBaseTx(5, pkScript)
	txCopy := tx.Copy()
	if !reflect.DeepEqual(tx, txCopy) {
		t.Fatalf("Copy\n got: %s want: %s", spew.Sdump(txCopy), spew.Sdump(tx))
	}

	txCopy.TxIn[0].SignatureScript[0] ^= 0xff
	txCopy.TxOut[0].PkScript[1] ^= 0xff
	if tx.TxIn[0].SignatureScript[0] != 0x04 || tx.TxOut[0].PkScript[1] != 0x02 {
		t.Fatalf("Copy shares scripts with the original")
	}
	if tx.TxHash() == txCopy.TxHash() {
		t.Fatalf("TxHash: modified copy hashes like the original")
	}
}
