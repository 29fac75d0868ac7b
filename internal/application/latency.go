package application

import "time"

// roundTrip stands in for a remote call. It ignores context cancellation:
// once an operation starts it runs to completion.
func roundTrip(latency time.Duration) {
	if latency <= 0 {
		return
	}
	time.Sleep(latency)
}
