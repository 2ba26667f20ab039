package editor

import "errors"

var (
	ErrTableNotFound = errors.New("property table not found")
	ErrRowNotFound   = errors.New("property row not found")
	ErrFieldNotFound = errors.New("sub-field not found")
	ErrNoSaver       = errors.New("no saver configured")
	ErrNoPoster      = errors.New("no event poster configured")
)
