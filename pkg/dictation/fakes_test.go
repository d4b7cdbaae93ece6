package dictation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Nephrolytics-ai/voxsyn/pkg/capture"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/stretchr/testify/mock"
)

// fakeDevice hands out streams whose chunks are pushed by the test.
type fakeDevice struct {
	openErr error
	opens   atomic.Int32
	gate    chan struct{}

	mu      sync.Mutex
	streams []*fakeStream
}

func (d *fakeDevice) Open(ctx context.Context, cfg capture.Config) (capture.Stream, error) {
	d.opens.Add(1)
	if d.gate != nil {
		<-d.gate
	}
	if d.openErr != nil {
		return nil, d.openErr
	}
	stream := &fakeStream{cfg: cfg.WithDefaults(), chunks: make(chan []byte)}
	d.mu.Lock()
	d.streams = append(d.streams, stream)
	d.mu.Unlock()
	return stream, nil
}

func (d *fakeDevice) last() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

type fakeStream struct {
	cfg    capture.Config
	chunks chan []byte
	once   sync.Once
	closed atomic.Bool
}

// push blocks until the session has taken the chunk.
func (s *fakeStream) push(chunk []byte) {
	s.chunks <- chunk
}

func (s *fakeStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *fakeStream) Config() capture.Config {
	return s.cfg
}

func (s *fakeStream) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.chunks)
	})
	return nil
}

type mockTranscriber struct {
	mock.Mock
}

func (m *mockTranscriber) Transcribe(ctx context.Context, payload model.AudioPayload, credential string) (string, model.GenerationMetadata, error) {
	args := m.Called(ctx, payload, credential)
	var meta model.GenerationMetadata
	if v := args.Get(1); v != nil {
		meta = v.(model.GenerationMetadata)
	}
	return args.String(0), meta, args.Error(2)
}
