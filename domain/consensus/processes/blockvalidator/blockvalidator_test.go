package blockvalidator

import (
	"context"
	"math"
	"testing"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/chaincfg"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/blockcache"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/ruleerrors"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/blocksigner"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/merkle"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/pow"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const testBlockTime = 1500000000

type testHarness struct {
	validator     *BlockValidator
	merkleTrees   *blockcache.MerkleTrees
	checkedBlocks *blockcache.CheckedBlocks
	tracker       *misbehavior.Tracker
}

func newTestHarness(t *testing.T, params *chaincfg.Params) *testHarness {
	merkleTrees, err := blockcache.NewMerkleTrees(blockcache.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewMerkleTrees: %v", err)
	}
	checkedBlocks, err := blockcache.NewCheckedBlocks(blockcache.DefaultCapacity)
	if err != nil {
		t.Fatalf("NewCheckedBlocks: %v", err)
	}
	tracker := misbehavior.NewTracker(0)
	return &testHarness{
		validator:     New(params, merkleTrees, checkedBlocks, tracker),
		merkleTrees:   merkleTrees,
		checkedBlocks: checkedBlocks,
		tracker:       tracker,
	}
}

func payToPubKey(t *testing.T, key *btcec.PrivateKey) []byte {
	pkScript, err := txscript.NewScriptBuilder().
		AddData(key.PubKey().SerializeCompressed()).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("NewScriptBuilder: %v", err)
	}
	return pkScript
}

func newTestKey(t *testing.T) *btcec.PrivateKey {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	return key
}

func coinBaseTx(pkScript []byte) *appmessage.MsgTx {
	tx := appmessage.NewMsgTx(appmessage.CurrentTxVersion, testBlockTime)
	tx.AddTxIn(appmessage.NewTxIn(appmessage.NewOutpoint(&chainhash.Hash{}, appmessage.MaxPrevOutIndex),
		[]byte{0x02, 0x10, 0x27}))
	tx.AddTxOut(appmessage.NewTxOut(100*100000000, pkScript))
	return tx
}

func spendTx(prevHash chainhash.Hash) *appmessage.MsgTx {
	tx := appmessage.NewMsgTx(appmessage.CurrentTxVersion, testBlockTime)
	tx.AddTxIn(appmessage.NewTxIn(appmessage.NewOutpoint(&prevHash, 0), []byte{0x51}))
	tx.AddTxOut(appmessage.NewTxOut(5*100000000, []byte{0x51}))
	return tx
}

func coinStakeTx(pkScript []byte) *appmessage.MsgTx {
	tx := appmessage.NewMsgTx(appmessage.CurrentTxVersion, testBlockTime)
	tx.AddTxIn(appmessage.NewTxIn(appmessage.NewOutpoint(&chainhash.Hash{0x5a}, 1), []byte{0x51}))
	tx.AddTxOut(appmessage.NewTxOut(0, []byte{}))
	tx.AddTxOut(appmessage.NewTxOut(2000*100000000, pkScript))
	return tx
}

// solve sets the merkle root of block and mines it on the regression test
// network.
func solve(t *testing.T, block *appmessage.MsgBlock) {
	block.Header.MerkleRoot = merkle.CalcMerkleRoot(block.Transactions)
	block.Header.Nonce = 0
	solved, err := pow.Solve(context.Background(), &block.Header, math.MaxUint32)
	if err != nil || !solved {
		t.Fatalf("Solve: solved %t, error %v", solved, err)
	}
}

func powBlock(t *testing.T) *appmessage.MsgBlock {
	block := appmessage.NewMsgBlock(appmessage.NewBlockHeader(appmessage.CurrentBlockVersion,
		&chainhash.Hash{0x01}, &chainhash.Hash{}, testBlockTime, chaincfg.RegressionNetParams.PowMaxBits, 0))
	block.AddTransaction(coinBaseTx(payToPubKey(t, newTestKey(t))))
	block.AddTransaction(spendTx(chainhash.Hash{0x02}))
	block.BlockSignature = []byte{}
	solve(t, block)
	return block
}

func posBlock(t *testing.T, key *btcec.PrivateKey) *appmessage.MsgBlock {
	block := appmessage.NewMsgBlock(appmessage.NewBlockHeader(appmessage.CurrentBlockVersion,
		&chainhash.Hash{0x01}, &chainhash.Hash{}, testBlockTime, chaincfg.RegressionNetParams.PowMaxBits, 0))
	coinBase := coinBaseTx([]byte{})
	coinBase.TxOut[0].Value = 0
	block.AddTransaction(coinBase)
	block.AddTransaction(coinStakeTx(payToPubKey(t, key)))
	block.AddTransaction(spendTx(chainhash.Hash{0x03}))
	block.Header.MerkleRoot = merkle.CalcMerkleRoot(block.Transactions)
	signPoSBlock(t, block, key)
	return block
}

func signPoSBlock(t *testing.T, block *appmessage.MsgBlock, key *btcec.PrivateKey) {
	signer, err := blocksigner.NewKeySigner(key)
	if err != nil {
		t.Fatalf("NewKeySigner: %v", err)
	}
	err = block.Sign(signer, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
}

func TestValidateBlockInIsolation(t *testing.T) {
	smallBlocks := chaincfg.RegressionNetParams
	smallBlocks.MaxBlockWeight = 100

	tests := []struct {
		name      string
		params    *chaincfg.Params
		block     func(t *testing.T) *appmessage.MsgBlock
		wantErr   error
		wantScore uint32
		// headerRule marks rules decided by the header alone. Their score is
		// kept under the block hash, all others under the block digest.
		headerRule bool
	}{
		{
			name:  "valid proof-of-work block",
			block: powBlock,
		},
		{
			name: "valid proof-of-stake block",
			block: func(t *testing.T) *appmessage.MsgBlock {
				return posBlock(t, newTestKey(t))
			},
		},
		{
			name: "legacy proof-of-work block without signature",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.Header.Version = appmessage.LegacyBlockVersion2
				solve(t, block)
				return block
			},
		},
		{
			name: "version too old",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.Header.Version = 1
				return block
			},
			wantErr:    ruleerrors.ErrBlockVersionTooOld,
			wantScore:  misbehavior.BanScoreBadVersion,
			headerRule: true,
		},
		{
			name:   "target above the network limit",
			params: &chaincfg.MainnetParams,
			block:  powBlock,
			// The regression test target is far above the main network limit.
			wantErr:   ruleerrors.ErrTargetTooHigh,
			wantScore: misbehavior.BanScoreBadDifficultyBits,
		},
		{
			name: "hash above target",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.Header.Bits = 0x1d00ffff
				return block
			},
			wantErr:   ruleerrors.ErrInvalidPoW,
			wantScore: misbehavior.BanScoreHighHash,
		},
		{
			name: "no transactions",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.ClearTransactions()
				return block
			},
			wantErr:   ruleerrors.ErrNoTransactions,
			wantScore: misbehavior.BanScoreNoTransactions,
		},
		{
			name:      "block too large",
			params:    &smallBlocks,
			block:     powBlock,
			wantErr:   ruleerrors.ErrBlockTooBig,
			wantScore: misbehavior.BanScoreBlockTooLarge,
		},
		{
			name: "first transaction not a coinbase",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.Transactions = block.Transactions[1:]
				return block
			},
			wantErr:   ruleerrors.ErrFirstTxNotCoinbase,
			wantScore: misbehavior.BanScoreFirstTxNotCoinBase,
		},
		{
			name: "second coinbase",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.AddTransaction(coinBaseTx([]byte{0x51}))
				return block
			},
			wantErr:   ruleerrors.ErrMultipleCoinbases,
			wantScore: misbehavior.BanScoreMultipleCoinBases,
		},
		{
			name: "coinstake after the second position",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.AddTransaction(coinStakeTx([]byte{0x51}))
				return block
			},
			wantErr:   ruleerrors.ErrCoinStakeNotSecond,
			wantScore: misbehavior.BanScoreCoinStakeNotSecond,
		},
		{
			name: "second coinstake",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := posBlock(t, newTestKey(t))
				block.AddTransaction(coinStakeTx([]byte{0x52}))
				return block
			},
			wantErr:   ruleerrors.ErrCoinStakeNotSecond,
			wantScore: misbehavior.BanScoreMultipleCoinStakes,
		},
		{
			name: "coinstake time differs from block time",
			block: func(t *testing.T) *appmessage.MsgBlock {
				key := newTestKey(t)
				block := posBlock(t, key)
				block.Transactions[1].Time--
				block.Header.MerkleRoot = merkle.CalcMerkleRoot(block.Transactions)
				signPoSBlock(t, block, key)
				return block
			},
			wantErr:   ruleerrors.ErrCoinStakeTimeViolation,
			wantScore: misbehavior.BanScoreCoinStakeTimeViolation,
		},
		{
			name: "bad merkle root",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.Transactions[1].TxOut[0].Value++
				return block
			},
			wantErr:   ruleerrors.ErrBadMerkleRoot,
			wantScore: misbehavior.BanScoreBadMerkleRoot,
		},
		{
			name: "duplicate transaction",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := powBlock(t)
				block.AddTransaction(block.Transactions[1].Copy())
				solve(t, block)
				return block
			},
			wantErr:   ruleerrors.ErrDuplicateTx,
			wantScore: misbehavior.BanScoreDuplicateTx,
		},
		{
			name: "proof-of-stake block signed by another key",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := posBlock(t, newTestKey(t))
				other := posBlock(t, newTestKey(t))
				block.BlockSignature = other.BlockSignature
				return block
			},
			wantErr:   ruleerrors.ErrBadBlockSignature,
			wantScore: misbehavior.BanScoreBadBlockSignature,
		},
		{
			name: "unsigned proof-of-stake block",
			block: func(t *testing.T) *appmessage.MsgBlock {
				block := posBlock(t, newTestKey(t))
				block.BlockSignature = []byte{}
				return block
			},
			wantErr:   ruleerrors.ErrBadBlockSignature,
			wantScore: misbehavior.BanScoreBadBlockSignature,
		},
	}

	for _, test := range tests {
		params := test.params
		if params == nil {
			params = &chaincfg.RegressionNetParams
		}
		harness := newTestHarness(t, params)
		block := test.block(t)
		blockHash := block.BlockHash()

		err := harness.validator.ValidateBlockInIsolation(block)
		if test.wantErr == nil {
			if err != nil {
				t.Errorf("%s: unexpected error %+v\nblock: %s", test.name, err, spew.Sdump(block))
				continue
			}
			if !harness.checkedBlocks.IsChecked(blockHash, blockcache.BlockDigest(block)) {
				t.Errorf("%s: valid block was not marked checked", test.name)
			}
			if !harness.merkleTrees.Has(blockHash) {
				t.Errorf("%s: merkle tree of valid block was not cached", test.name)
			}
			continue
		}

		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.wantErr)
			continue
		}
		var ruleErr ruleerrors.RuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("%s: error %v is not a RuleError", test.name, err)
		}
		if got := misbehavior.BanScoreOf(err); got != test.wantScore {
			t.Errorf("%s: error carries ban score %d, want %d", test.name, got, test.wantScore)
		}
		if got := harness.validator.MisbehaviorScore(block); got != test.wantScore {
			t.Errorf("%s: misbehavior score %d, want %d", test.name, got, test.wantScore)
		}
		wantHeaderScore := uint32(0)
		if test.headerRule {
			wantHeaderScore = test.wantScore
		}
		if got := harness.tracker.Score(blockHash); got != wantHeaderScore {
			t.Errorf("%s: block hash score %d, want %d", test.name, got, wantHeaderScore)
		}
		if harness.checkedBlocks.IsChecked(blockHash, blockcache.BlockDigest(block)) {
			t.Errorf("%s: rejected block was marked checked", test.name)
		}
	}
}

func TestValidateSkipsCheckedBlocks(t *testing.T) {
	harness := newTestHarness(t, &chaincfg.RegressionNetParams)
	block := powBlock(t)
	blockHash := block.BlockHash()

	harness.checkedBlocks.MarkChecked(blockHash, blockcache.BlockDigest(block))
	err := harness.validator.ValidateBlockInIsolation(block)
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: checked block was validated again: %v", err)
	}
	if harness.merkleTrees.Has(blockHash) {
		t.Fatalf("ValidateBlockInIsolation: checked block reached the merkle check")
	}
}

// tamperedCopy returns a copy of block with the same hash but no transactions
// and a malformed signature.
func tamperedCopy(block *appmessage.MsgBlock) *appmessage.MsgBlock {
	tampered := block.Copy()
	tampered.ClearTransactions()
	tampered.BlockSignature = []byte{0x30, 0x01}
	return tampered
}

// skipProofOfWorkParams returns regression test parameters without the
// proof-of-work check, so unsolved blocks reach the body rules.
func skipProofOfWorkParams() *chaincfg.Params {
	params := chaincfg.RegressionNetParams
	params.SkipProofOfWork = true
	return &params
}

func TestValidateTamperedCopyAfterCheckedBlock(t *testing.T) {
	harness := newTestHarness(t, skipProofOfWorkParams())
	block := posBlock(t, newTestKey(t))

	err := harness.validator.ValidateBlockInIsolation(block)
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: %+v", err)
	}

	tampered := tamperedCopy(block)
	if tampered.BlockHash() != block.BlockHash() {
		t.Fatalf("tampered copy has a different block hash")
	}
	err = harness.validator.ValidateBlockInIsolation(tampered)
	if !errors.Is(err, ruleerrors.ErrNoTransactions) {
		t.Fatalf("ValidateBlockInIsolation: tampered copy got %v, want %v", err, ruleerrors.ErrNoTransactions)
	}
	if score := harness.tracker.Score(block.BlockHash()); score != 0 {
		t.Fatalf("tampered copy penalized the block hash by %d", score)
	}

	err = harness.validator.ValidateBlockInIsolation(block)
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: checked block rejected after tampered copy: %+v", err)
	}
}

func TestValidateTamperedCopyBeforeBlock(t *testing.T) {
	harness := newTestHarness(t, skipProofOfWorkParams())
	block := posBlock(t, newTestKey(t))
	tampered := tamperedCopy(block)

	for i := 0; i < 2; i++ {
		err := harness.validator.ValidateBlockInIsolation(tampered)
		if !errors.Is(err, ruleerrors.ErrNoTransactions) {
			t.Fatalf("attempt %d: got %v, want %v", i, err, ruleerrors.ErrNoTransactions)
		}
	}
	if !harness.tracker.IsBanned(blockcache.BlockDigest(tampered)) {
		t.Fatalf("tampered copy with score %d is not banned under its digest",
			harness.tracker.Score(blockcache.BlockDigest(tampered)))
	}

	err := harness.validator.ValidateBlockInIsolation(block)
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: block rejected after tampered copy: %+v", err)
	}
	if harness.tracker.IsBanned(block.BlockHash()) {
		t.Fatalf("block banned by the score %d of its tampered copies", harness.tracker.Score(block.BlockHash()))
	}
	if score := harness.validator.MisbehaviorScore(block); score != 0 {
		t.Fatalf("MisbehaviorScore: got %d, want 0", score)
	}
}

func TestValidateIgnoresStaleMerkleTree(t *testing.T) {
	harness := newTestHarness(t, &chaincfg.RegressionNetParams)
	block := powBlock(t)
	blockHash := block.BlockHash()

	// Cache the tree of the honest body, then swap the body under the same
	// header.
	harness.merkleTrees.Get(block)
	block.Transactions[1] = spendTx(chainhash.Hash{0x7f})

	err := harness.validator.ValidateBlockInIsolation(block)
	if !errors.Is(err, ruleerrors.ErrBadMerkleRoot) {
		t.Fatalf("ValidateBlockInIsolation: got %v, want %v", err, ruleerrors.ErrBadMerkleRoot)
	}
	if harness.merkleTrees.Has(blockHash) {
		t.Fatalf("ValidateBlockInIsolation: mismatching merkle tree was kept")
	}
}

func TestRepeatedRejectionsBan(t *testing.T) {
	harness := newTestHarness(t, &chaincfg.RegressionNetParams)
	block := powBlock(t)
	block.Header.Bits = 0x1d00ffff
	digest := blockcache.BlockDigest(block)

	for i := 0; i < 2; i++ {
		err := harness.validator.ValidateBlockInIsolation(block)
		if !errors.Is(err, ruleerrors.ErrInvalidPoW) {
			t.Fatalf("attempt %d: got %v, want %v", i, err, ruleerrors.ErrInvalidPoW)
		}
	}
	if !harness.tracker.IsBanned(digest) {
		t.Fatalf("block with score %d is not banned", harness.tracker.Score(digest))
	}
}

func TestRepeatedVersionRejectionsBanBlockHash(t *testing.T) {
	harness := newTestHarness(t, &chaincfg.RegressionNetParams)
	block := powBlock(t)
	block.Header.Version = 1
	blockHash := block.BlockHash()

	for i := 0; i < 2; i++ {
		tampered := block.Copy()
		tampered.Transactions[1] = spendTx(chainhash.Hash{byte(i)})
		err := harness.validator.ValidateBlockInIsolation(tampered)
		if !errors.Is(err, ruleerrors.ErrBlockVersionTooOld) {
			t.Fatalf("attempt %d: got %v, want %v", i, err, ruleerrors.ErrBlockVersionTooOld)
		}
	}
	if score := harness.tracker.Score(blockHash); score != 2*misbehavior.BanScoreBadVersion {
		t.Fatalf("block hash score %d, want %d", score, 2*misbehavior.BanScoreBadVersion)
	}
}
