package model

import "errors"

var errNotANumber = errors.New("model: not a number")
var errInvalidHash = errors.New("model: invalid hash")
