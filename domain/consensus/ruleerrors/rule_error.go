package ruleerrors

// These constants are used to identify a specific RuleError.
var (
	// ErrBlockVersionTooOld indicates the block version is too old and is
	// no longer accepted.
	ErrBlockVersionTooOld = newRuleError("ErrBlockVersionTooOld")

	// ErrTargetTooHigh indicates specified bits do not align with
	// the expected value either because it is above the valid
	// range.
	ErrTargetTooHigh = newRuleError("ErrTargetTooHigh")

	// ErrNegativeTarget indicates specified bits do not align with
	// the expected value either because it is negative.
	ErrNegativeTarget = newRuleError("ErrNegativeTarget")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrNoTransactions indicates the block does not have a least one
	// transaction. A valid block must have at least the coinbase
	// transaction.
	ErrNoTransactions = newRuleError("ErrNoTransactions")

	// ErrBlockTooBig indicates the weight of a block exceeds the maximum
	// allowed limit.
	ErrBlockTooBig = newRuleError("ErrBlockTooBig")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value). A
	// valid block may only contain unique transactions.
	ErrDuplicateTx = newRuleError("ErrDuplicateTx")

	// ErrFirstTxNotCoinbase indicates the first transaction in a block
	// is not a coinbase transaction.
	ErrFirstTxNotCoinbase = newRuleError("ErrFirstTxNotCoinbase")

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases = newRuleError("ErrMultipleCoinbases")

	// ErrCoinStakeNotSecond indicates a coinstake transaction appears
	// anywhere but right after the coinbase.
	ErrCoinStakeNotSecond = newRuleError("ErrCoinStakeNotSecond")

	// ErrCoinStakeTimeViolation indicates the coinstake timestamp of a
	// proof-of-stake block differs from the block timestamp.
	ErrCoinStakeTimeViolation = newRuleError("ErrCoinStakeTimeViolation")

	// ErrBadBlockSignature indicates the block signature does not verify
	// against the key of the block producer.
	ErrBadBlockSignature = newRuleError("ErrBadBlockSignature")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}
