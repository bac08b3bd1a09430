// Package dispatch delivers validated display commands to a device sink.
//
// The Dispatcher is the runtime half of the set_text contract. It accepts
// only display.Command values, which can only be produced by successful
// validation, so it never re-checks text, speed or mode. Handing it a zero
// Command is a programming error and panics.
//
// Each Dispatch call performs exactly one sink write. There are no retries
// and no queuing: if the sink fails, the failure is returned as a *Error of
// kind SinkFailure with the sink's own error preserved for errors.As. A
// timeout, taken from Dispatcher.Timeout or the caller's context deadline,
// is reported as kind Timeout. A timeout only means the caller stopped
// waiting; the write may still complete on the device.
//
// Example:
//
//	d := dispatch.New(s)
//	d.Timeout = 3 * time.Second
//	ack, err := d.Dispatch(ctx, cmd)
//	if err != nil {
//	    // *dispatch.Error
//	}
//	fmt.Println(ack) // Displayed "HELLO" on /dev/ttyUSB0 (left, speed 4)
package dispatch
