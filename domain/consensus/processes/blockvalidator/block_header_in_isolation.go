package blockvalidator

import (
	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/ruleerrors"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/pow"
	"github.com/pkg/errors"
)

func (v *BlockValidator) checkBlockVersion(block *appmessage.MsgBlock) error {
	if block.Header.Version < appmessage.LegacyBlockVersion2 {
		return misbehavior.Wrapf(misbehavior.BanScoreBadVersion, ruleerrors.ErrBlockVersionTooOld,
			"block version %d is older than %d", block.Header.Version, appmessage.LegacyBlockVersion2)
	}
	return nil
}

// checkProofOfWork checks the header hash of proof-of-work blocks against
// their target. Proof-of-stake blocks are proven by their kernel instead, so
// whether the check applies depends on the transactions and not only on the
// header.
func (v *BlockValidator) checkProofOfWork(block *appmessage.MsgBlock) error {
	if v.params.SkipProofOfWork || block.IsProofOfStake() {
		return nil
	}

	err := pow.CheckProofOfWork(&block.Header, v.params.PowMax)
	if err != nil {
		banScore := uint32(misbehavior.BanScoreBadDifficultyBits)
		if errors.Is(err, ruleerrors.ErrInvalidPoW) {
			banScore = misbehavior.BanScoreHighHash
		}
		return misbehavior.Wrapf(banScore, err, "proof of work check failed")
	}
	return nil
}
