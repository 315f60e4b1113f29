package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	ready   bool

	errUnavailable = errors.New("clipboard unavailable")
)

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write so a late dispatch result
// cannot interleave with an ask-once delivery.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return errUnavailable
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
