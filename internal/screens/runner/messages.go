package runner

import (
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
)

// timerTickMsg is sent every second while an exam is running.
type timerTickMsg time.Time

// speechDoneMsg is sent when playback of a listening script ends.
type speechDoneMsg struct {
	Seq int
	Err error
}

// recordSavedMsg is sent once the finished test has been written to history.
type recordSavedMsg struct {
	Record history.Record
	Err    error
}
