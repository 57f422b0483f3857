package monitor

import "errors"

var (
	// ErrUnknownEvent is returned for an event type the dispatcher does not handle.
	ErrUnknownEvent = errors.New("monitor: unknown event type")

	// ErrUnknownDevice is returned when an event names a DevEUI that is not registered.
	ErrUnknownDevice = errors.New("monitor: unknown device")

	// ErrHandlerPanic is returned when an event handler panicked.
	ErrHandlerPanic = errors.New("monitor: event handler panic")

	// ErrUnknownCommand is returned for a command name with no byte code.
	ErrUnknownCommand = errors.New("monitor: unknown command")
)
