// Package events provides an asynchronous, thread-safe emitter for the
// engine's append-only audit records. The engine emits a record for every
// state transition; subscribers (log sinks, indexers, test probes) consume
// them off the engine's critical path. Emission never blocks a protocol
// operation: when the buffer is full the record is dropped and counted.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rony4d/veilgov/inter"
)

const (
	// DefaultBufferSize is the default capacity of the record buffer.
	DefaultBufferSize = 1024

	// shutdownTimeout bounds how long Stop waits for in-flight records.
	shutdownTimeout = 10 * time.Second
)

// Handler consumes one audit record. Handlers run on the emitter's dispatch
// goroutine and must not block for long.
type Handler func(rec *inter.Record)

// Emitter is a buffered asynchronous dispatcher of audit records.
type Emitter struct {
	recordChan chan *inter.Record

	subMu       sync.RWMutex
	subscribers map[string]Handler

	emitted   uint64
	dropped   uint64
	processed uint64

	running  atomic.Value // bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewEmitter creates an emitter with the given buffer capacity.
// A non-positive size falls back to DefaultBufferSize.
func NewEmitter(bufferSize int) *Emitter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	e := &Emitter{
		recordChan:  make(chan *inter.Record, bufferSize),
		subscribers: make(map[string]Handler),
		stopChan:    make(chan struct{}),
	}
	e.running.Store(false)
	return e
}

// Subscribe registers a named handler. Re-subscribing under the same name
// replaces the previous handler.
func (e *Emitter) Subscribe(name string, h Handler) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subscribers[name] = h
}

// Unsubscribe removes a named handler.
func (e *Emitter) Unsubscribe(name string) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	delete(e.subscribers, name)
}

// Start begins dispatching records to subscribers.
func (e *Emitter) Start() error {
	if e.running.Load().(bool) {
		return fmt.Errorf("emitter already running")
	}
	e.running.Store(true)

	e.wg.Add(1)
	go e.dispatch()
	return nil
}

// Stop drains buffered records and shuts the dispatcher down. Records left
// after the shutdown timeout are abandoned with a warning.
func (e *Emitter) Stop() error {
	if !e.running.Load().(bool) {
		return fmt.Errorf("emitter not running")
	}
	e.running.Store(false)
	close(e.stopChan)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Warn("audit emitter shutdown timeout, some records may be lost")
	}
	return nil
}

// Emit queues a record for dispatch. It implements the engine's Recorder
// dependency. The record is dropped (and counted) when the buffer is full,
// so a slow subscriber can never stall a protocol operation.
func (e *Emitter) Emit(rec *inter.Record) {
	atomic.AddUint64(&e.emitted, 1)
	select {
	case e.recordChan <- rec:
	default:
		atomic.AddUint64(&e.dropped, 1)
		log.WithFields(log.Fields{
			"type":  rec.Type.String(),
			"batch": rec.Batch,
		}).Warn("audit record dropped due to buffer overflow")
	}
}

// Stats returns the emitted/dropped/processed counters.
func (e *Emitter) Stats() (emitted, dropped, processed uint64) {
	return atomic.LoadUint64(&e.emitted),
		atomic.LoadUint64(&e.dropped),
		atomic.LoadUint64(&e.processed)
}

func (e *Emitter) dispatch() {
	defer e.wg.Done()
	for {
		select {
		case rec := <-e.recordChan:
			e.deliver(rec)
		case <-e.stopChan:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case rec := <-e.recordChan:
					e.deliver(rec)
				default:
					return
				}
			}
		}
	}
}

func (e *Emitter) deliver(rec *inter.Record) {
	e.subMu.RLock()
	handlers := make([]Handler, 0, len(e.subscribers))
	for _, h := range e.subscribers {
		handlers = append(handlers, h)
	}
	e.subMu.RUnlock()

	for _, h := range handlers {
		h(rec)
	}
	atomic.AddUint64(&e.processed, 1)
}

// LogHandler returns a Handler that mirrors every record into the
// structured log at debug level. Wired by the launcher so an operator can
// tail the audit stream without an external subscriber.
func LogHandler() Handler {
	return func(rec *inter.Record) {
		log.WithFields(log.Fields{
			"type":    rec.Type.String(),
			"actor":   rec.Actor.Hex(),
			"batch":   rec.Batch,
			"request": string(rec.Request),
			"hash":    rec.Hash().Hex(),
		}).Debug("audit record")
	}
}
