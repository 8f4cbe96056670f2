package seesaw

import "errors"

var (
	// ErrNotReady is returned by every operation of a session that is not Ready.
	ErrNotReady = errors.New("seesaw: device not ready")
	// ErrUnknownHardwareID means the device answered with an unsupported chip code.
	ErrUnknownHardwareID = errors.New("seesaw: unknown hardware id")
)
