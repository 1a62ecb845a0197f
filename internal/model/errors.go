package model

import "errors"

// ErrIndexOutOfRange is returned by feature edits outside [0, len).
var ErrIndexOutOfRange = errors.New("index out of range")
