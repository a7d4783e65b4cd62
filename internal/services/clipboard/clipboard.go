// Package clipboard copies rendered reports to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const errorUnavailableFormat = "clipboard unavailable: %w"

// ErrUnsupported is returned when the platform offers no clipboard utility.
var ErrUnsupported = errors.New("no clipboard utility found")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll    func(string) error
	unsupported bool
}

// NewService constructs a clipboard service bound to the system clipboard.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return fmt.Errorf(errorUnavailableFormat, ErrUnsupported)
	}
	if writeError := service.writeAll(text); writeError != nil {
		return fmt.Errorf(errorUnavailableFormat, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
