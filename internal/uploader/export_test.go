package uploader

import "time"

// SetSleepForTest replaces the retry delay so tests run instantly.
func SetSleepForTest(u *Uploader, fn func(time.Duration)) {
	u.sleep = fn
}
