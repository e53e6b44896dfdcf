package sh

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/robotalks/uvk5.go/pkg/clone"
)

// progressRenderer draws a bar per transfer from engine progress.
type progressRenderer struct {
	w io.Writer

	lock sync.Mutex
	bar  *progressbar.ProgressBar
	op   clone.Op
}

func newBar(w io.Writer, p clone.Progress) *progressbar.ProgressBar {
	return progressbar.NewOptions(p.Total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(string(p.Op)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(32),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

// Update is a clone.ProgressFunc.
func (r *progressRenderer) Update(p clone.Progress) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.bar == nil || r.op != p.Op {
		r.bar = newBar(r.w, p)
		r.op = p.Op
	}
	r.bar.Set(p.Done)
	if p.Done >= p.Total {
		r.bar.Finish()
		r.bar = nil
	}
}

// Done ends the current bar, if a transfer stopped half way.
func (r *progressRenderer) Done() {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.bar != nil {
		r.bar.Exit()
		fmt.Fprintln(r.w)
		r.bar = nil
	}
}
