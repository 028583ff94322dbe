package allocator

import "errors"

var (
	// ErrInvalidCellSize is returned when the configured cell size is not positive
	ErrInvalidCellSize = errors.New("allocator: invalid cell size")
	// ErrInvalidMagnitude is returned for negative region magnitudes or regions
	// spanning more than MaxRegionCells cells
	ErrInvalidMagnitude = errors.New("allocator: invalid magnitude")
	// ErrInvalidCapacity is returned when the total memory capacity is not positive
	ErrInvalidCapacity = errors.New("allocator: invalid total capacity")
)
