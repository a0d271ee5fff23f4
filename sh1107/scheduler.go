// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sh1107

import "time"

// frameInterval is the refresh cadence, one tick per ~60Hz frame.
const frameInterval = 16667 * time.Microsecond

// Scheduler arms the one-shot timer that coalesces display refreshes.
//
// Schedule arranges for fire to run once after delay. The device never
// arms a second callback while one is outstanding, so implementations do
// not coalesce on their own. Simulation hosts with a virtual clock supply
// their own implementation; tests drive refreshes by firing manually.
//
// Schedule is called with the device lock held and fire takes it again,
// so implementations must not run fire synchronously.
type Scheduler interface {
	Schedule(delay time.Duration, fire func())
}

// TimerScheduler schedules on the runtime's wall clock timers. The
// callback runs on its own goroutine.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(delay time.Duration, fire func()) {
	time.AfterFunc(delay, fire)
}
