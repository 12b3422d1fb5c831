// internal/writer/types.go
package writer

import (
	"errors"
	"strings"

	"github.com/tamzrod/basedctl/internal/poller"
)

// Writer delivers one info run somewhere.
type Writer interface {
	Write(res poller.PollResult) error
}

// multi fans a result out to every writer. One failing writer does not
// stop the others.
type multi []Writer

func (m multi) Write(res poller.PollResult) error {
	var errs []string
	for _, w := range m {
		if err := w.Write(res); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
