package capture

import (
	"sync"
	"sync/atomic"
)

// exclusive enforces one open stream per device.
type exclusive struct {
	inUse atomic.Bool
}

func (e *exclusive) acquire() error {
	if !e.inUse.CompareAndSwap(false, true) {
		return ErrDeviceBusy
	}
	return nil
}

func (e *exclusive) release() {
	e.inUse.Store(false)
}

// chunkStream hands chunks from a producer goroutine to the consumer without dropping.
// The producer returns false from next when the source is exhausted.
type chunkStream struct {
	cfg      Config
	chunks   chan []byte
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
	closeErr error
	release  func() error
}

func newChunkStream(cfg Config, release func() error) *chunkStream {
	return &chunkStream{
		cfg:      cfg,
		chunks:   make(chan []byte),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		release:  release,
	}
}

func (s *chunkStream) run(next func() ([]byte, bool)) {
	defer close(s.finished)
	defer close(s.chunks)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		chunk, ok := next()
		if !ok {
			<-s.done
			return
		}
		if len(chunk) == 0 {
			continue
		}

		select {
		case s.chunks <- chunk:
		case <-s.done:
			return
		}
	}
}

func (s *chunkStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *chunkStream) Config() Config {
	return s.cfg
}

func (s *chunkStream) Close() error {
	s.once.Do(func() {
		close(s.done)
		<-s.finished
		if s.release != nil {
			s.closeErr = s.release()
		}
	})
	return s.closeErr
}
