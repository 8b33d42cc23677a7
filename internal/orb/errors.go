package orb

import "errors"

var (
	// ErrParameterBounds indicates a body coefficient outside its valid range.
	ErrParameterBounds = errors.New("orb: parameter out of valid bounds")

	// ErrEmptyRect indicates a bounding rectangle with no extent.
	ErrEmptyRect = errors.New("orb: bounding rectangle has no extent")
)
