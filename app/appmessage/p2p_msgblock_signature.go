package appmessage

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
)

// coinStakeKeyOutput is the coinstake output whose key signs a
// proof-of-stake block. Output 0 of a coinstake is always empty.
const coinStakeKeyOutput = 1

// VerifySignature checks BlockSignature against the key that produced the
// block.
//
// A proof-of-stake block is signed by the pay-to-pubkey key of its coinstake
// output 1. Proof-of-work blocks may be unsigned; a signature on one must
// match a pay-to-pubkey output of its coinbase. Any mismatch between
// expectStake and the block kind, and any parse or verification failure,
// returns false.
func (msg *MsgBlock) VerifySignature(expectStake bool) bool {
	if expectStake != msg.IsProofOfStake() {
		return false
	}

	blockHash := msg.BlockHash()

	if expectStake {
		coinStake := msg.Transactions[1]
		if len(coinStake.TxOut) <= coinStakeKeyOutput {
			return false
		}
		return verifyWithPayToPubKey(coinStake.TxOut[coinStakeKeyOutput].PkScript, blockHash[:], msg.BlockSignature)
	}

	if len(msg.BlockSignature) == 0 {
		return true
	}
	if len(msg.Transactions) == 0 {
		return false
	}
	for _, txOut := range msg.Transactions[0].TxOut {
		if verifyWithPayToPubKey(txOut.PkScript, blockHash[:], msg.BlockSignature) {
			return true
		}
	}
	return false
}

// verifyWithPayToPubKey verifies a DER signature of hash against the key of a
// pay-to-pubkey script. Scripts of any other class never verify.
func verifyWithPayToPubKey(pkScript []byte, hash []byte, signature []byte) bool {
	if txscript.GetScriptClass(pkScript) != txscript.PubKeyTy {
		return false
	}

	// <push pubkey> OP_CHECKSIG
	pubKey, err := btcec.ParsePubKey(pkScript[1 : len(pkScript)-1])
	if err != nil {
		return false
	}

	parsedSignature, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}

	return parsedSignature.Verify(hash, pubKey)
}
