package usecase

import "time"

// timeNow is the package clock for registry timestamps, replaceable in tests.
var timeNow = func() time.Time { return time.Now().UTC() }
