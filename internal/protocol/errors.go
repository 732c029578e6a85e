package protocol

import "errors"

var (
	ErrInvalidCommand    = errors.New("protocol: invalid command")
	ErrPayloadTooLarge   = errors.New("protocol: payload too large")
	ErrTruncatedResponse = errors.New("protocol: truncated response")
	ErrSensorTimeout     = errors.New("protocol: sensor communication timeout (0xF1)")
	ErrUnknownVariant    = errors.New("protocol: unknown wire variant")
)
