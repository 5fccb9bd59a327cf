// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package loader

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	ErrDataOverflow  = errors.New(f("data segment overflow"))
	ErrDataDirective = errors.New(f("data outside of .data"))
	ErrValueMissing  = errors.New(f("directive value missing"))
	ErrStringInvalid = errors.New(f("string literal invalid"))
)

// ErrDirective is an unknown assembler directive.
type ErrDirective string

func (ed ErrDirective) Error() string {
	return f("directive '%v' unknown", string(ed))
}

// ErrDuplicate is a symbol or label defined more than once.
type ErrDuplicate string

func (ed ErrDuplicate) Error() string {
	return f("'%v' already defined", string(ed))
}

// ErrName is an invalid symbol or label name.
type ErrName string

func (en ErrName) Error() string {
	return f("name '%v' invalid", string(en))
}

// ErrValue is a directive value that cannot be parsed.
type ErrValue string

func (ev ErrValue) Error() string {
	return f("value '%v' invalid", string(ev))
}
