package pow

import (
	"context"
	"math/big"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/ruleerrors"
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
	"github.com/btcsuite/btcd/blockchain"
	"github.com/pkg/errors"
)

// CheckProofOfWorkWithTarget check's if the block has a valid PoW according to the provided target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkWithTarget(header *appmessage.MsgBlockHeader, target *big.Int) bool {
	powHash := header.PoWHash()

	// The block pow hash must be less or equal than the claimed target.
	return blockchain.HashToBig(&powHash).Cmp(target) <= 0
}

// CheckProofOfWorkByBits check's if the block has a valid PoW according to its Bits field
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkByBits(header *appmessage.MsgBlockHeader) bool {
	return CheckProofOfWorkWithTarget(header, blockchain.CompactToBig(header.Bits))
}

// CheckProofOfWork ensures the target difficulty of the header is in the
// valid range up to powLimit and that its proof-of-work hash meets it.
func CheckProofOfWork(header *appmessage.MsgBlockHeader, powLimit *big.Int) error {
	target := blockchain.CompactToBig(header.Bits)

	// The target difficulty must be larger than zero.
	if target.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrNegativeTarget, "block target difficulty of %064x is too low",
			target)
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Cmp(powLimit) > 0 {
		return errors.Wrapf(ruleerrors.ErrTargetTooHigh, "block target difficulty of %064x is "+
			"higher than max of %064x", target, powLimit)
	}

	if !CheckProofOfWorkWithTarget(header, target) {
		powHash := header.PoWHash()
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block %s has invalid proof of work: pow hash %s "+
			"is higher than target %064x", header.BlockHash(), powHash, target)
	}
	return nil
}

// Solve searches the nonces from header.Nonce up to maxNonce for one that
// satisfies the target of header.Bits, and sets it on the header. It returns
// false if no nonce in the range does. The context is polled between
// attempts; on cancellation the header keeps its original nonce.
func Solve(ctx context.Context, header *appmessage.MsgBlockHeader, maxNonce uint32) (bool, error) {
	if header.Nonce > maxNonce {
		return false, nil
	}

	onEnd := logger.LogAndMeasureExecutionTime(log, "Solve")
	defer onEnd()

	target := blockchain.CompactToBig(header.Bits)
	candidate := *header

	for nonce := header.Nonce; ; nonce++ {
		select {
		case <-ctx.Done():
			log.Debugf("Nonce search canceled at nonce %d", nonce)
			return false, errors.WithStack(ctx.Err())
		default:
		}

		candidate.Nonce = nonce
		if CheckProofOfWorkWithTarget(&candidate, target) {
			header.Nonce = nonce
			log.Debugf("Found nonce %d for target %064x", nonce, target)
			return true, nil
		}

		if nonce == maxNonce {
			return false, nil
		}
	}
}
