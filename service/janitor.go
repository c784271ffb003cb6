package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ImageJanitor deletes replaced or orphaned images in the background.
// Failures are logged and never reach the request that triggered them.
type ImageJanitor struct {
	store   ObjectStore
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewImageJanitor a nil store makes every Discard a no-op
func NewImageJanitor(store ObjectStore, log *zap.Logger) *ImageJanitor {
	return &ImageJanitor{store: store, log: log, timeout: 30 * time.Second}
}

// Discard schedules removal of the objects behind urls
func (j *ImageJanitor) Discard(urls ...string) {
	if j == nil || j.store == nil {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		j.wg.Add(1)
		go j.remove(u)
	}
}

func (j *ImageJanitor) remove(objectURL string) {
	defer j.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.Delete(ctx, objectURL); err != nil {
		j.log.Warn("image cleanup failed", zap.String("url", objectURL), zap.Error(err))
		return
	}
	j.log.Debug("image removed", zap.String("url", objectURL))
}

// Wait blocks until every scheduled removal has finished
func (j *ImageJanitor) Wait() {
	if j == nil {
		return
	}
	j.wg.Wait()
}
