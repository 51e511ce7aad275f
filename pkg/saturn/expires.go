/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import "time"

// Expiry helpers. Expiry times are rounded up to an even multiple of the
// given unit so that the emitted timestamps stay stable within a unit.

// ExpiresInSeconds returns a time n seconds from now, rounded up to a whole
// second.
func ExpiresInSeconds(n int) time.Time {
	return expires(time.Second, n)
}

// ExpiresInMinutes returns a time n minutes from now, rounded up to a whole
// minute.
func ExpiresInMinutes(n int) time.Time {
	return expires(time.Minute, n)
}

// ExpiresInHours returns a time n hours from now, rounded up to a whole hour.
func ExpiresInHours(n int) time.Time {
	return expires(time.Hour, n)
}

// ExpiresInDays returns a time n days from now, rounded up to a whole day.
func ExpiresInDays(n int) time.Time {
	return expires(24*time.Hour, n)
}

func expires(unit time.Duration, n int) time.Time {
	now := time.Now()

	rounded := now.Truncate(unit)
	if rounded.Before(now) {
		rounded = rounded.Add(unit)
	}

	return rounded.Add(time.Duration(n) * unit)
}
