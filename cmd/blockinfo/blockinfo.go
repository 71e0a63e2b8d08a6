package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/blockcache"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/processes/blockvalidator"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/blockweight"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

type blockInfo struct {
	hash             chainhash.Hash
	powHash          chainhash.Hash
	header           appmessage.MsgBlockHeader
	isProofOfStake   bool
	transactions     int
	weight           int64
	kernel           appmessage.Outpoint
	kernelTime       uint32
	hasKernel        bool
	signatureValid   bool
	stakeEntropyBit  uint32
	validationErr    error
	misbehaviorScore uint32
	banThreshold     uint32
}

func run(cfg *configFlags, out io.Writer) error {
	blockHex := cfg.BlockHex
	if cfg.BlockFile != "" {
		content, err := os.ReadFile(cfg.BlockFile)
		if err != nil {
			return errors.Wrapf(err, "could not read block file %s", cfg.BlockFile)
		}
		blockHex = string(content)
	}

	block, err := decodeBlock(blockHex, cfg.blockEncoding())
	if err != nil {
		return err
	}
	log.Debugf("Decoded block %s with %d transactions", block.BlockHash(), len(block.Transactions))

	merkleTrees, err := blockcache.NewMerkleTrees(cfg.MerkleCacheSize)
	if err != nil {
		return err
	}
	checkedBlocks, err := blockcache.NewCheckedBlocks(cfg.MerkleCacheSize)
	if err != nil {
		return err
	}
	tracker := misbehavior.NewTracker(cfg.BanScore)
	validator := blockvalidator.New(cfg.NetParams(), merkleTrees, checkedBlocks, tracker)

	info := inspectBlock(block, validator, tracker)
	if cfg.PrintStakeModifier {
		log.Infof("Block %s stake entropy bit %d", info.hash, info.stakeEntropyBit)
	}
	return info.write(out)
}

// decodeBlock decodes a hex encoded block. Whitespace around the hex string
// is ignored, trailing bytes after the block are not.
func decodeBlock(blockHex string, encoding appmessage.BlockEncoding) (*appmessage.MsgBlock, error) {
	serializedBlock, err := hex.DecodeString(strings.TrimSpace(blockHex))
	if err != nil {
		return nil, errors.Wrap(err, "block is not valid hex")
	}

	reader := bytes.NewReader(serializedBlock)
	block := &appmessage.MsgBlock{}
	err = block.Decode(reader, encoding)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s block", encoding)
	}
	if reader.Len() != 0 {
		return nil, errors.Errorf("%d unexpected bytes after the block", reader.Len())
	}
	return block, nil
}

func inspectBlock(block *appmessage.MsgBlock, validator *blockvalidator.BlockValidator,
	tracker *misbehavior.Tracker) *blockInfo {

	info := &blockInfo{
		hash:            block.BlockHash(),
		powHash:         block.PoWHash(),
		header:          block.Header,
		isProofOfStake:  block.IsProofOfStake(),
		transactions:    len(block.Transactions),
		weight:          blockweight.BlockWeight(block),
		signatureValid:  block.VerifySignature(block.IsProofOfStake()),
		stakeEntropyBit: block.Header.StakeEntropyBit(),
		banThreshold:    tracker.BanThreshold(),
	}
	info.kernel, info.kernelTime, info.hasKernel = block.ProofOfStakeKernel()
	info.validationErr = validator.ValidateBlockInIsolation(block)
	info.misbehaviorScore = validator.MisbehaviorScore(block)
	return info
}

func (info *blockInfo) kind() string {
	if info.isProofOfStake {
		return "proof-of-stake"
	}
	return "proof-of-work"
}

func (info *blockInfo) write(w io.Writer) error {
	kernel := "none"
	if info.hasKernel {
		kernel = fmt.Sprintf("%s at time %d", info.kernel, info.kernelTime)
	}
	signature := "invalid"
	if info.signatureValid {
		signature = "valid"
	}
	validation := "ok"
	if info.validationErr != nil {
		validation = info.validationErr.Error()
	}

	lines := []struct {
		name  string
		value interface{}
	}{
		{"Hash", info.hash},
		{"PoW hash", info.powHash},
		{"Version", info.header.Version},
		{"Previous block", info.header.PrevBlock},
		{"Merkle root", info.header.MerkleRoot},
		{"Time", info.header.Timestamp},
		{"Bits", fmt.Sprintf("%08x", info.header.Bits)},
		{"Nonce", info.header.Nonce},
		{"Kind", info.kind()},
		{"Transactions", info.transactions},
		{"Weight", info.weight},
		{"Kernel", kernel},
		{"Signature", signature},
		{"Validation", validation},
		{"Misbehavior", fmt.Sprintf("%d/%d", info.misbehaviorScore, info.banThreshold)},
	}
	for _, line := range lines {
		_, err := fmt.Fprintf(w, "%-16s%v\n", line.name+":", line.value)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
