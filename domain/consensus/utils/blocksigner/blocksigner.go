package blocksigner

import (
	"bytes"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// KeySigner signs blocks with a single private key. It only signs blocks
// whose producing output pays to its key: coinstake output 1 for
// proof-of-stake blocks, any coinbase output for proof-of-work blocks.
type KeySigner struct {
	privateKey *btcec.PrivateKey
	pkScripts  [][]byte
}

// NewKeySigner returns a signer for privateKey.
func NewKeySigner(privateKey *btcec.PrivateKey) (*KeySigner, error) {
	pubKey := privateKey.PubKey()
	pkScripts := make([][]byte, 0, 2)
	for _, serializedPubKey := range [][]byte{pubKey.SerializeCompressed(), pubKey.SerializeUncompressed()} {
		pkScript, err := txscript.NewScriptBuilder().
			AddData(serializedPubKey).
			AddOp(txscript.OP_CHECKSIG).
			Script()
		if err != nil {
			return nil, errors.Wrap(err, "could not build pay-to-pubkey script")
		}
		pkScripts = append(pkScripts, pkScript)
	}

	return &KeySigner{
		privateKey: privateKey,
		pkScripts:  pkScripts,
	}, nil
}

// SignBlock returns a DER encoded signature of the block hash.
func (s *KeySigner) SignBlock(block *appmessage.MsgBlock, fees btcutil.Amount) ([]byte, error) {
	if fees < 0 || fees > btcutil.MaxSatoshi {
		return nil, errors.Errorf("invalid block fees %s", fees)
	}
	if !s.ownsBlock(block) {
		return nil, errors.Errorf("block %s does not pay to the signing key", block.BlockHash())
	}

	blockHash := block.BlockHash()
	return ecdsa.Sign(s.privateKey, blockHash[:]).Serialize(), nil
}

func (s *KeySigner) ownsBlock(block *appmessage.MsgBlock) bool {
	if block.IsProofOfStake() {
		coinStake := block.Transactions[1]
		return len(coinStake.TxOut) > 1 && s.ownsScript(coinStake.TxOut[1].PkScript)
	}

	if len(block.Transactions) == 0 {
		return false
	}
	for _, txOut := range block.Transactions[0].TxOut {
		if s.ownsScript(txOut.PkScript) {
			return true
		}
	}
	return false
}

func (s *KeySigner) ownsScript(pkScript []byte) bool {
	for _, ownScript := range s.pkScripts {
		if bytes.Equal(pkScript, ownScript) {
			return true
		}
	}
	return false
}
