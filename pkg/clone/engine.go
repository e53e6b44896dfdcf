package clone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/layout"
	"github.com/robotalks/uvk5.go/pkg/link"
)

// Report summarizes a finished or failed transfer.
type Report struct {
	Op     Op
	Blocks int
	Bytes  int
	// Retries maps block offsets to the retries they needed.
	Retries map[int]int
	Elapsed time.Duration
}

// TotalRetries sums the retries of all blocks.
func (r *Report) TotalRetries() int {
	n := 0
	for _, v := range r.Retries {
		n += v
	}
	return n
}

// Engine owns one device and one memory image for a session.
type Engine struct {
	dev  Device
	size int
	conf Config

	lock  sync.RWMutex
	state State
	image *layout.Image
}

// New creates an Engine for an image of size bytes.
func New(dev Device, size int, opts ...Option) *Engine {
	conf := defaultConfig()
	for _, opt := range opts {
		opt(&conf)
	}
	if len(conf.Regions) == 0 {
		conf.Regions = []Region{{Offset: 0, Length: size}}
	}
	return &Engine{
		dev:   dev,
		size:  size,
		conf:  conf,
		image: layout.NewImage(size),
	}
}

// Size returns the image size.
func (e *Engine) Size() int {
	return e.size
}

// State gets the current state.
func (e *Engine) State() State {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.state
}

// Image returns a copy of the current image.
func (e *Engine) Image() *layout.Image {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.image.Clone()
}

// Load replaces the image with one obtained elsewhere (e.g. a file) and
// makes it ready for upload.
func (e *Engine) Load(ctx context.Context, img *layout.Image) error {
	if img.Len() != e.size {
		return fmt.Errorf("image size %d, want %d", img.Len(), e.size)
	}
	e.lock.Lock()
	if e.state.IsTransferring() {
		e.lock.Unlock()
		return ErrBusy
	}
	e.image = img.Clone()
	e.lock.Unlock()
	e.setState(ctx, Ready)
	return nil
}

// Edit runs fn on a copy of the image and commits the copy only when fn
// succeeds.
func (e *Engine) Edit(fn func(*layout.Image) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.state != Ready {
		if e.state.IsTransferring() {
			return ErrBusy
		}
		return ErrNotReady
	}
	scratch := e.image.Clone()
	if err := fn(scratch); err != nil {
		return err
	}
	e.image = scratch
	return nil
}

// Close releases the device if it can be closed and returns to Idle.
func (e *Engine) Close() error {
	var err error
	if closer, ok := e.dev.(io.Closer); ok {
		err = closer.Close()
	}
	e.setState(context.Background(), Idle)
	return err
}

// Download reads the whole image from the device. The engine image is
// replaced only when every block succeeded.
func (e *Engine) Download(ctx context.Context) (*Report, error) {
	if err := e.begin(ctx, Downloading, false); err != nil {
		return nil, err
	}
	report := &Report{Op: OpDownload, Retries: make(map[int]int)}
	start := time.Now()
	scratch := layout.NewImage(e.size)
	err := e.handshake(ctx)
	if err == nil {
		err = e.transfer(ctx, report, []Region{{Offset: 0, Length: e.size}}, func(ctx context.Context, off, n int) error {
			data, err := e.dev.ReadBlock(ctx, off, n)
			if err != nil {
				return err
			}
			if len(data) != n {
				return &link.ProtocolError{Reason: fmt.Sprintf("read 0x%04x returned %d bytes, want %d", off, len(data), n)}
			}
			_, err = scratch.WriteAt(data, int64(off))
			return err
		})
	}
	report.Elapsed = time.Since(start)
	if err != nil {
		glog.Errorf("download failed: %v", err)
		e.setState(ctx, Idle)
		return report, err
	}
	e.lock.Lock()
	e.image = scratch
	e.lock.Unlock()
	glog.Infof("download done: %d blocks, %d retries in %v", report.Blocks, report.TotalRetries(), report.Elapsed)
	e.setState(ctx, Ready)
	return report, nil
}

// Upload validates the image and writes the configured regions to the device.
func (e *Engine) Upload(ctx context.Context) (*Report, error) {
	return e.UploadRegions(ctx)
}

// UploadRegions is Upload writing regions instead of the configured ones.
// No regions means the configured ones.
func (e *Engine) UploadRegions(ctx context.Context, regions ...Region) (*Report, error) {
	if len(regions) == 0 {
		regions = e.conf.Regions
	}
	if err := e.begin(ctx, Uploading, true); err != nil {
		return nil, err
	}
	img := e.Image()
	if v := e.conf.Validator; v != nil {
		if err := v.Validate(img); err != nil {
			e.setState(ctx, Ready)
			return nil, err
		}
	}
	report := &Report{Op: OpUpload, Retries: make(map[int]int)}
	start := time.Now()
	err := e.handshake(ctx)
	if err == nil {
		err = e.transfer(ctx, report, regions, func(ctx context.Context, off, n int) error {
			data, err := img.Slice(off, n)
			if err != nil {
				return err
			}
			return e.writeBlock(ctx, off, data)
		})
	}
	if err == nil && e.conf.Reset {
		if resetter, ok := e.dev.(Resetter); ok {
			err = resetter.Reset(ctx)
		}
	}
	report.Elapsed = time.Since(start)
	if err != nil {
		glog.Errorf("upload failed: %v", err)
		if errors.Is(err, link.ErrClosed) {
			e.setState(ctx, Idle)
		} else {
			e.setState(ctx, Ready)
		}
		return report, err
	}
	glog.Infof("upload done: %d blocks, %d retries in %v", report.Blocks, report.TotalRetries(), report.Elapsed)
	e.setState(ctx, Ready)
	return report, nil
}

func (e *Engine) begin(ctx context.Context, state State, needImage bool) error {
	e.lock.Lock()
	if e.state.IsTransferring() {
		e.lock.Unlock()
		return ErrBusy
	}
	if needImage && e.state != Ready {
		e.lock.Unlock()
		return ErrNotReady
	}
	e.state = state
	notifiers := e.conf.Notifiers
	e.lock.Unlock()
	for _, n := range notifiers {
		n.StateChanged(ctx, state)
	}
	return nil
}

func (e *Engine) setState(ctx context.Context, state State) {
	e.lock.Lock()
	changed := e.state != state
	e.state = state
	e.lock.Unlock()
	if changed {
		for _, n := range e.conf.Notifiers {
			n.StateChanged(ctx, state)
		}
	}
}

func (e *Engine) handshake(ctx context.Context) error {
	h, ok := e.dev.(Handshaker)
	if !ok {
		return nil
	}
	return e.retry(ctx, nil, "hello", 0, h.Hello)
}

// blocks splits regions into block-sized chunks in increasing offset order.
func (e *Engine) blocks(regions []Region) []Region {
	sorted := append([]Region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	var blocks []Region
	for _, r := range sorted {
		for off := r.Offset; off < r.End(); off += e.conf.BlockSize {
			n := e.conf.BlockSize
			if off+n > r.End() {
				n = r.End() - off
			}
			blocks = append(blocks, Region{Offset: off, Length: n})
		}
	}
	return blocks
}

func (e *Engine) transfer(ctx context.Context, report *Report, regions []Region, fn func(context.Context, int, int) error) error {
	blocks := e.blocks(regions)
	total := 0
	for _, b := range blocks {
		total += b.Length
	}
	for _, b := range blocks {
		if b.Offset < 0 || b.End() > e.size {
			return &layout.BoundsError{Field: string(report.Op), Offset: b.Offset, Size: b.Length, Limit: e.size}
		}
		b := b
		err := e.retry(ctx, report, report.Op, b.Offset, func(ctx context.Context) error {
			return fn(ctx, b.Offset, b.Length)
		})
		if err != nil {
			return err
		}
		report.Blocks++
		report.Bytes += b.Length
		glog.V(2).Infof("%s 0x%04x+%d ok (%d/%d)", report.Op, b.Offset, b.Length, report.Bytes, total)
		progress := Progress{
			Op:      report.Op,
			Offset:  b.Offset,
			Done:    report.Bytes,
			Total:   total,
			Retries: report.Retries[b.Offset],
		}
		for _, p := range e.conf.Progress {
			p(progress)
		}
	}
	return nil
}

func (e *Engine) writeBlock(ctx context.Context, off int, data []byte) error {
	if err := e.dev.WriteBlock(ctx, off, data); err != nil {
		return err
	}
	if !e.conf.Verify {
		return nil
	}
	readback, err := e.dev.ReadBlock(ctx, off, len(data))
	if err != nil {
		return err
	}
	if expected, actual := link.CRC16(data), link.CRC16(readback); expected != actual || len(readback) != len(data) {
		return &VerificationError{Offset: off, Expected: expected, Actual: actual}
	}
	return nil
}

// retry runs fn until it succeeds, fails permanently, or the retry budget
// is used up. Retries are counted per offset in report when given.
func (e *Engine) retry(ctx context.Context, report *Report, op Op, off int, fn func(context.Context) error) error {
	var err error
	attempts := 0
	for attempts <= e.conf.Retries {
		if attempts > 0 {
			if report != nil {
				report.Retries[off]++
			}
			glog.Warningf("%s 0x%04x attempt %d failed: %v", op, off, attempts, err)
		}
		attempts++
		if err = fn(ctx); err == nil {
			return nil
		}
		var verr *VerificationError
		if errors.As(err, &verr) {
			return err
		}
		if ctx.Err() != nil || !link.IsTemporary(err) {
			break
		}
	}
	return &TransferError{Op: op, Offset: off, Attempts: attempts, Err: err}
}
