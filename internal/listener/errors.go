// SPDX-License-Identifier: MIT
package listener

import (
	"errors"
	"fmt"
)

// ErrClassifier wraps per-frame wake word failures. They are treated as no
// detection for that frame.
var ErrClassifier = errors.New("wake word classifier failed")

// StartupError reports that the device or the classifier is unavailable.
// It is the only error that stops the listener.
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup: %s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }
