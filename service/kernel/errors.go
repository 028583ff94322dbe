package kernel

import "errors"

// ErrUnknownAlgorithm is returned when no scheduler policy is registered
// under the requested name.
var ErrUnknownAlgorithm = errors.New("kernel: unknown scheduling algorithm")
