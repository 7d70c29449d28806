package donationpool

import (
	"math"

	"github.com/iov-one/poolweave/errors"
)

// ComputeFee returns floor(amount * rate / 100) for a non negative amount
// and a rate in [0, MaxFeeRate]. The multiplication is split so that the
// result is exact for every int64 amount.
func ComputeFee(amount, rate int64) (int64, error) {
	if amount < 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "negative amount %d", amount)
	}
	if rate < 0 || rate > MaxFeeRate {
		return 0, errors.Wrapf(ErrInvalidFeeRate, "rate %d", rate)
	}
	return (amount/100)*rate + (amount%100)*rate/100, nil
}

// NetAmount returns the part of the gross amount paid out to the recipient
// together with the fee kept by the pool.
func NetAmount(gross, rate int64) (net, fee int64, err error) {
	fee, err = ComputeFee(gross, rate)
	if err != nil {
		return 0, 0, err
	}
	return gross - fee, fee, nil
}

// addChecked returns a + b for non negative values, failing instead of
// wrapping around.
func addChecked(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return a + b, nil
}
