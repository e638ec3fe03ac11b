package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

// FakeEnqueuer records enqueued tasks instead of talking to redis.
type FakeEnqueuer struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (f *FakeEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	f.Tasks = append(f.Tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

// FakeSequence hands out deterministic receipt codes.
type FakeSequence struct {
	mu  sync.Mutex
	n   int
	Err error
}

func (f *FakeSequence) NextReceiptCode(ctx context.Context, at time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	f.n++
	return fmt.Sprintf("MAT-%s-%03d", at.UTC().Format("060102"), f.n), nil
}

// FakeStorage keeps objects in memory.
type FakeStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (f *FakeStorage) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = buf.Bytes()
	f.Types[key] = contentType
	return nil
}

func (f *FakeStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	return url.Parse("https://objects.test/" + key + "?expires=" + expiry.String())
}

// FakeFlags returns fixed feature values per identifier.
type FakeFlags map[string]string

func (f FakeFlags) Value(ctx context.Context, identifier, feature string) (string, bool) {
	v, ok := f[identifier+"/"+feature]
	return v, ok
}
