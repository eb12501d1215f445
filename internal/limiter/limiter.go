package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles a tight deletion loop to roughly a maximum CPU
// percentage by sleeping between bursts of work. Coarse on purpose;
// operators wanting hard limits use cgroups.
type CPULimiter struct {
	maxPercent float64
	lastSleep  time.Time
}

const workSlice = 10 * time.Millisecond

func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastSleep:  time.Now(),
	}
}

// Throttle sleeps when the current work slice is used up. To stay at
// maxPercent CPU, the loop sleeps (100-maxPercent)/maxPercent times as
// long as it worked.
func (l *CPULimiter) Throttle() {
	if l.maxPercent <= 0 || l.maxPercent >= 100 {
		return
	}

	if time.Since(l.lastSleep) > workSlice {
		sleep := time.Duration(float64(workSlice) * (100.0 - l.maxPercent) / l.maxPercent)
		time.Sleep(sleep)
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}
