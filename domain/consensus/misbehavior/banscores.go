package misbehavior

// DefaultBanThreshold is the score at which a block's source is banned.
const DefaultBanThreshold = 100

// Ban scores for misbehaving blocks
const (
	BanScoreMalformedBlock = 100
	BanScoreBadVersion     = 100

	BanScoreHighHash          = 50
	BanScoreBadDifficultyBits = 100

	BanScoreBadMerkleRoot      = 100
	BanScoreDuplicateTx        = 100
	BanScoreNoTransactions     = 100
	BanScoreBlockTooLarge      = 100
	BanScoreFirstTxNotCoinBase = 100
	BanScoreMultipleCoinBases  = 100

	BanScoreCoinStakeNotSecond     = 100
	BanScoreMultipleCoinStakes     = 100
	BanScoreBadBlockSignature      = 100
	BanScoreCoinStakeTimeViolation = 50
)
