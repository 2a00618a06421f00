package loader

import "errors"

var (
	errUnsupportedRelocation = errors.New("loader: unsupported relocation type")
	errRelocationOutOfRange  = errors.New("loader: relocation slot out of range")
	errSegmentOutOfRange     = errors.New("loader: segment extends past allocated buffer")
)
