package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/gcsflow/internal/storage"
)

// ErrStreamTimeout is reported when a streamed transfer reaches neither
// outcome within its timeout.
var ErrStreamTimeout = errors.New("transfer: stream timed out")

const defaultStreamTimeout = 30 * time.Minute

// Streamed copies a local file into an object writer. Each write blocks until
// the writer has room, so the file is never read faster than the remote side
// consumes it and memory stays bounded by the chunk size.
type Streamed struct {
	log       logrus.FieldLogger
	client    storage.Client
	timeout   time.Duration
	chunkSize int
}

// Ensure interface compliance.
var _ Strategy = (*Streamed)(nil)

func NewStreamed(log logrus.FieldLogger, client storage.Client, cfg Config) (*Streamed, error) {
	chunkSize, err := cfg.ChunkBytes()
	if err != nil {
		return nil, err
	}

	timeout := cfg.StreamTimeout
	if timeout <= 0 {
		timeout = defaultStreamTimeout
	}

	return &Streamed{
		log:       log.WithField("component", "stream"),
		client:    client,
		timeout:   timeout,
		chunkSize: chunkSize,
	}, nil
}

func (s *Streamed) Name() string { return StrategyStreamed }

// Transfer streams job and waits for its outcome.
func (s *Streamed) Transfer(ctx context.Context, job Job) error {
	return s.start(ctx, job).wait()
}

// Start begins streaming job and returns immediately. onComplete is called
// exactly once, on another goroutine, with the outcome.
func (s *Streamed) Start(ctx context.Context, job Job, onComplete func(succeeded bool)) {
	done := s.start(ctx, job)
	go func() {
		onComplete(done.wait() == nil)
	}()
}

func (s *Streamed) start(ctx context.Context, job Job) *completion {
	done := newCompletion()

	src, err := os.Open(job.LocalPath)
	if err != nil {
		done.resolve(fmt.Errorf("transfer: failed to open %q: %w", job.LocalPath, err))
		return done
	}

	// timeoutCtx bounds the whole transfer. sinkCtx lets the pump abort the
	// remote object without tripping the watchdog.
	timeoutCtx, stop := context.WithTimeout(ctx, s.timeout)
	sinkCtx, abort := context.WithCancel(timeoutCtx)

	sink, err := s.client.NewWriter(sinkCtx, job.Bucket, job.Destination, storage.WriterOptions{
		Gzip:      job.Gzip,
		ChunkSize: s.chunkSize,
	})
	if err != nil {
		abort()
		stop()
		_ = src.Close()
		done.resolve(fmt.Errorf("transfer: failed to open //%s/%s: %w", job.Bucket, job.Destination, err))
		return done
	}

	go s.watch(timeoutCtx, job, done)
	go s.pump(src, sink, job, done, abort, stop)

	return done
}

// pump owns src and sink and releases both on every path.
func (s *Streamed) pump(src io.ReadCloser, sink io.WriteCloser, job Job, done *completion, abort, stop context.CancelFunc) {
	defer stop()
	defer src.Close()

	w := &countingWriter{w: sink}
	if _, err := io.Copy(w, src); err != nil {
		abort()
		_ = sink.Close()
		done.resolve(fmt.Errorf("transfer: stream to //%s/%s failed after %s: %w",
			job.Bucket, job.Destination, units.HumanSize(float64(w.n)), err))
		return
	}

	err := sink.Close()
	abort()
	if err != nil {
		done.resolve(fmt.Errorf("transfer: finalising //%s/%s failed: %w", job.Bucket, job.Destination, err))
		return
	}

	if done.resolve(nil) {
		s.log.WithFields(logrus.Fields{
			"bucket": job.Bucket,
			"object": job.Destination,
			"size":   units.HumanSize(float64(w.n)),
		}).Info("Write stream complete")
	}
}

// watch fails the transfer when ctx ends first, even if the sink ignores
// cancellation and never returns.
func (s *Streamed) watch(ctx context.Context, job Job, done *completion) {
	<-ctx.Done()

	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s", ErrStreamTimeout, s.timeout)
	}
	done.resolve(fmt.Errorf("transfer: stream to //%s/%s: %w", job.Bucket, job.Destination, err))
}

// completion is a single-assignment outcome. Only the first resolve counts.
type completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// resolve records err as the outcome and reports whether this call was the
// one that did so.
func (c *completion) resolve(err error) bool {
	resolved := false
	c.once.Do(func() {
		c.err = err
		close(c.done)
		resolved = true
	})
	return resolved
}

func (c *completion) wait() error {
	<-c.done
	return c.err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
