package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Webhook counts notification outcomes at the receiver.
type Webhook struct {
	Received   Counter
	Rejected   Counter
	Invalid    Counter
	Duplicates Counter
	Failed     Counter
	Processed  Counter
}

type WebhookSnapshot struct {
	Received   uint64 `json:"received"`
	Rejected   uint64 `json:"rejected"`
	Invalid    uint64 `json:"invalid"`
	Duplicates uint64 `json:"duplicates"`
	Failed     uint64 `json:"failed"`
	Processed  uint64 `json:"processed"`
}

func (w *Webhook) Snapshot() WebhookSnapshot {
	return WebhookSnapshot{
		Received:   w.Received.Load(),
		Rejected:   w.Rejected.Load(),
		Invalid:    w.Invalid.Load(),
		Duplicates: w.Duplicates.Load(),
		Failed:     w.Failed.Load(),
		Processed:  w.Processed.Load(),
	}
}
