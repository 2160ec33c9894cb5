package board

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"innoboard/domain"
)

// TaskService is the remote call surface the dispatcher needs. The
// HTTP client satisfies it; tests substitute mocks.
type TaskService interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error)
	UploadAttachment(ctx context.Context, id, filename string, data io.Reader) (domain.Attachment, error)
	ReorderTasks(ctx context.Context, ids []string) ([]domain.Task, error)
}

// Dispatcher translates user intents into an optimistic store mutation
// plus exactly one outbound request each. All store mutations and all
// completion handling run on a single loop goroutine, so concurrent
// intents never interleave mid-mutation and responses apply in the
// order they arrive, not the order they were dispatched. Requests are
// never cancelled or retried; each failure is terminal for its intent
// and surfaced once.
type Dispatcher struct {
	store  *Store
	svc    TaskService
	rec    *reconciler
	notify Notifier
	logger *log.Logger

	ops       chan func()
	done      chan struct{}
	pending   sync.WaitGroup
	closeOnce sync.Once

	// Loop-only bookkeeping of in-flight intents per record. Overlapping
	// intents mark the id conflicted: their snapshots were taken against
	// another intent's unconfirmed guess and cannot be restored safely.
	inflight   map[string]int
	conflicted map[string]bool
}

// NewDispatcher starts the loop goroutine. Close releases it.
func NewDispatcher(store *Store, svc TaskService, notify Notifier, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	d := &Dispatcher{
		store:      store,
		svc:        svc,
		rec:        &reconciler{store: store, notify: notify},
		notify:     notify,
		logger:     logger,
		ops:        make(chan func(), 64),
		done:       make(chan struct{}),
		inflight:   make(map[string]int),
		conflicted: make(map[string]bool),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for fn := range d.ops {
		fn()
	}
}

// Store exposes the collection store for renderers.
func (d *Dispatcher) Store() *Store { return d.store }

// Close waits for in-flight intents and stops the loop.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.pending.Wait()
		close(d.ops)
		<-d.done
	})
}

// Quiesce blocks until no intents are in flight or ctx expires. After
// a successful Quiesce the store content equals what a fresh fetch
// would return, absent intervening intents.
func (d *Dispatcher) Quiesce(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) post(fn func()) {
	d.ops <- fn
}

// beginRecordIntent registers an in-flight intent for id. Runs on the
// loop. A second intent dispatched while one is still in flight marks
// the id conflicted for both.
func (d *Dispatcher) beginRecordIntent(id string) {
	if d.inflight[id] > 0 {
		d.conflicted[id] = true
	}
	d.inflight[id]++
}

// endRecordIntent reports whether the finishing intent overlapped
// another intent for the same record. Runs on the loop; bookkeeping is
// cleared once the record has no intents left.
func (d *Dispatcher) endRecordIntent(id string) bool {
	conflicted := d.conflicted[id]
	if d.inflight[id]--; d.inflight[id] <= 0 {
		delete(d.inflight, id)
		delete(d.conflicted, id)
	}
	return conflicted
}

// Refresh fetches the authoritative task list and replaces the mirror.
// There is no optimistic phase and nothing to roll back on failure.
func (d *Dispatcher) Refresh() {
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, "refresh", "")
		go func() {
			start := time.Now()
			tasks, err := d.svc.ListTasks(ctx)
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				if err != nil {
					d.notify.Failure("could not fetch tasks", err)
					m.Log(err)
					return
				}
				d.rec.refresh(tasks)
				m.Log(nil)
			})
		}()
	})
}

// Create submits a new task. There is no optimistic record because the
// server assigns the identifier; the returned record is upserted on
// success. Validation failures are returned synchronously and nothing
// is dispatched.
func (d *Dispatcher) Create(fields domain.TaskFields) error {
	if err := domain.Validate(fields); err != nil {
		return err
	}
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, "create", "")
		go func() {
			start := time.Now()
			rec, err := d.svc.CreateTask(ctx, fields)
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				if err != nil {
					// No local record existed, nothing to roll back.
					d.notify.Failure("could not add task", err)
					m.Log(err)
					return
				}
				d.rec.confirm(rec)
				d.notify.Success("task added")
				m.Log(nil)
			})
		}()
	})
	return nil
}

// Update patches a task optimistically and reconciles with the
// server's returned record. On failure the record reverts to its
// pre-intent snapshot; other records are unaffected.
func (d *Dispatcher) Update(id string, patch domain.TaskPatch) {
	d.patchIntent("update", "could not update task", "task updated", id, patch,
		func(ctx context.Context) (domain.Task, error) {
			return d.svc.UpdateTask(ctx, id, patch)
		})
}

// ChangeCaseNumber edits the display case number. The store re-sorts
// on the optimistic upsert and again on rollback, so ordering always
// matches the case-number rule on both paths.
func (d *Dispatcher) ChangeCaseNumber(id, caseNumber string) {
	patch := domain.TaskPatch{CaseNumber: &caseNumber}
	d.patchIntent("change-number", "could not update case number", "case number updated", id, patch,
		func(ctx context.Context) (domain.Task, error) {
			return d.svc.UpdateTask(ctx, id, patch)
		})
}

// ChangeStatus sets the completion status optimistically.
func (d *Dispatcher) ChangeStatus(id string, status domain.Status) {
	d.patchIntentApply("change-status", "could not update status", "status updated", id,
		func(t *domain.Task) { t.Status = status },
		func(ctx context.Context) (domain.Task, error) {
			return d.svc.UpdateTaskStatus(ctx, id, status)
		})
}

func (d *Dispatcher) patchIntent(intent, failSummary, okSummary, id string, patch domain.TaskPatch, call func(context.Context) (domain.Task, error)) {
	d.patchIntentApply(intent, failSummary, okSummary, id,
		func(t *domain.Task) { patch.ApplyTo(t) }, call)
}

// patchIntentApply is the shared optimistic-update path: snapshot,
// apply locally, call remote, reconcile in completion order. When the
// intent overlapped another one for the same record, a failure cannot
// restore its snapshot (the snapshot captured the other intent's
// unconfirmed guess), so it falls back to a full refetch.
func (d *Dispatcher) patchIntentApply(intent, failSummary, okSummary, id string, apply func(*domain.Task), call func(context.Context) (domain.Task, error)) {
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, intent, id)
		d.beginRecordIntent(id)
		snap := d.store.snapshot(id)
		if snap.present {
			patched := snap.task.Clone()
			apply(&patched)
			d.store.Upsert(patched)
		}
		go func() {
			start := time.Now()
			rec, err := call(ctx)
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				conflicted := d.endRecordIntent(id)
				if err != nil {
					m.SetRolledBack()
					if conflicted {
						d.notify.Failure(failSummary, err)
						d.Refresh()
					} else {
						d.rec.fail(failSummary, snap, err)
					}
					m.Log(err)
					return
				}
				d.rec.confirm(rec)
				d.notify.Success(okSummary)
				m.Log(nil)
			})
		}()
	})
}

// Delete removes the task optimistically. A failed delete re-inserts
// the record at its prior position, unless the intent overlapped
// another one for the same record, in which case it refetches.
func (d *Dispatcher) Delete(id string) {
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, "delete", id)
		d.beginRecordIntent(id)
		snap := d.store.snapshot(id)
		d.store.Remove(id)
		go func() {
			start := time.Now()
			err := d.svc.DeleteTask(ctx, id)
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				conflicted := d.endRecordIntent(id)
				if err != nil {
					m.SetRolledBack()
					if conflicted {
						d.notify.Failure("could not delete task", err)
						d.Refresh()
					} else {
						d.rec.fail("could not delete task", snap, err)
					}
					m.Log(err)
					return
				}
				// Already removed locally; confirmation is a no-op.
				d.notify.Success("task deleted")
				m.Log(nil)
			})
		}()
	})
}

// Attach uploads a file for the task. The attachment reference only
// exists once the server stored the file, so there is no optimistic
// phase; the reference is appended on success.
func (d *Dispatcher) Attach(id, filename string, data []byte) {
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, "attach", id)
		go func() {
			start := time.Now()
			ref, err := d.svc.UploadAttachment(ctx, id, filename, bytes.NewReader(data))
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				if err != nil {
					d.notify.Failure("could not upload attachment", err)
					m.Log(err)
					return
				}
				if task, ok := d.store.Get(id); ok {
					task.Attachments = append(task.Attachments, ref)
					d.rec.confirm(task)
				}
				d.notify.Success("attachment uploaded")
				m.Log(nil)
			})
		}()
	})
}

// Reorder applies a new id sequence optimistically and submits it to
// the server; the canonical post-reorder list wins on success, the
// previous sequence is restored on failure. The gesture layer only
// needs to hand over the final ordered ids.
func (d *Dispatcher) Reorder(ids []string) {
	ordered := make([]string, len(ids))
	copy(ordered, ids)
	d.pending.Add(1)
	d.post(func() {
		m, ctx := newIntentMetrics(context.Background(), d.logger, "reorder", "")
		prev := d.store.IDs()
		d.store.Reorder(ordered)
		go func() {
			start := time.Now()
			tasks, err := d.svc.ReorderTasks(ctx, ordered)
			m.ObserveCall(time.Since(start))
			d.post(func() {
				defer d.pending.Done()
				if err != nil {
					m.SetRolledBack()
					d.rec.failOrder("could not reorder tasks", prev, err)
					m.Log(err)
					return
				}
				d.rec.confirmOrder(tasks)
				m.Log(nil)
			})
		}()
	})
}
