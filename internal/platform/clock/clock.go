// Package clock provides the wall clock used by the use cases.
package clock

import "time"

// System reads the current time in UTC.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
