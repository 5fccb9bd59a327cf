package io

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	// Console errors
	ErrOutputMissing = errors.New(f("console output missing"))
)
