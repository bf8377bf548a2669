// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package sink

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/woozymasta/schemasynth"
)

const throttleKey = "documents"

// limiter is the part of fortify rate limiter used by Throttle.
type limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Throttle limits how many documents per second reach the wrapped sink.
type Throttle struct {
	next    Sink
	limiter limiter
	wait    time.Duration
}

// NewThrottle wraps next with a token bucket of rate documents per second.
// Rate below 1 returns next unchanged.
func NewThrottle(next Sink, rate int) Sink {
	if rate < 1 {
		return next
	}

	wait := time.Second / time.Duration(rate)
	if wait < time.Millisecond {
		wait = time.Millisecond
	}

	return &Throttle{
		next: next,
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    1,
			Interval: time.Second,
		}),
		wait: wait,
	}
}

// Write blocks until a token is available or ctx is done.
func (t *Throttle) Write(ctx context.Context, doc *schemasynth.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for !t.limiter.Allow(ctx, throttleKey) {
		timer := time.NewTimer(t.wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return t.next.Write(ctx, doc)
}

// Close closes wrapped sink.
func (t *Throttle) Close() error {
	return t.next.Close()
}
