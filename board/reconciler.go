package board

import (
	"innoboard/domain"
)

// reconciler applies remote outcomes to the store. The server's
// returned record always wins over the optimistic guess: the backend
// may normalize or enrich fields, so confirmations re-upsert the
// payload instead of trusting local state. Failures restore the
// pre-mutation snapshot for the affected record only and surface one
// notification.
type reconciler struct {
	store  *Store
	notify Notifier
}

// confirm applies a server-returned record.
func (r *reconciler) confirm(rec domain.Task) {
	r.store.Upsert(rec)
}

// confirmOrder applies the canonical post-reorder task list: record
// content and explicit order both come from the server.
func (r *reconciler) confirmOrder(tasks []domain.Task) {
	for _, t := range tasks {
		r.store.Upsert(t)
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	r.store.Reorder(ids)
}

// refresh replaces the whole mirror with a fresh fetch.
func (r *reconciler) refresh(tasks []domain.Task) {
	r.store.ReplaceAll(tasks)
}

// fail rolls the affected record back to its snapshot and notifies.
// Records other than the snapshotted one are never touched.
func (r *reconciler) fail(summary string, snap recordSnapshot, err error) {
	r.store.restore(snap)
	r.notify.Failure(summary, err)
}

// failOrder rolls a reorder back to the previous id sequence.
func (r *reconciler) failOrder(summary string, prev []string, err error) {
	r.store.Reorder(prev)
	r.notify.Failure(summary, err)
}
