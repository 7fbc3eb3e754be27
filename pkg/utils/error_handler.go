package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorHandler logs err under the given message and returns the wrapped
// error, or nil when err is nil.
func ErrorHandler(err error, message string) error {
	if err != nil {
		Logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error(message)
		return fmt.Errorf("%s: %w", message, err)
	}
	return nil
}
