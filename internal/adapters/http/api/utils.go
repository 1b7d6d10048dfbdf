// Package api declares HTTP contracts and route registration helpers.
package api

import "time"

// nowMS returns the current time in Unix milliseconds. A variable so
// tests can pin the clock.
var nowMS = func() int64 { return time.Now().UnixMilli() }
