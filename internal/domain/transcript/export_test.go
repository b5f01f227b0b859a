package transcript

import "time"

// SetSleepForTest replaces the backoff sleeper so tests run without waiting.
func (p *Poller) SetSleepForTest(sleep func(time.Duration)) {
	p.sleep = sleep
}
