package service

import "time"

// backoffDelay returns the delay required before the next dispatch attempt
// of an item that has failed retryCount times: base × 2^retryCount, capped
// at max. A zero retryCount means no failures yet, so no delay.
func backoffDelay(base, max time.Duration, retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}

	// Beyond 30 doublings the shift would overflow any sane base; the cap
	// applies long before that anyway.
	if retryCount > 30 {
		return max
	}

	delay := base << uint(retryCount)
	if delay <= 0 || delay > max {
		return max
	}
	return delay
}
