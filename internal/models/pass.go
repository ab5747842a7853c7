package models

import "time"

// Pass is a single predicted ISS fly-over for a location.
type Pass struct {
	RiseTime int64 `json:"risetime"` // RiseTime is the unix timestamp (seconds) at which the pass begins.
	Duration int64 `json:"duration"` // Duration of the pass in seconds.
}

// RiseAt returns the rise time as a time.Time in UTC.
func (p Pass) RiseAt() time.Time {
	return time.Unix(p.RiseTime, 0).UTC()
}
