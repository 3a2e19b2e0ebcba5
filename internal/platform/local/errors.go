package local

import "errors"

// ErrClosed is returned when arming a timer after Close.
var ErrClosed = errors.New("timer service closed")
