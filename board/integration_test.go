package board

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"innoboard/boardtest"
	"innoboard/client"
	"innoboard/domain"
)

// End-to-end convergence: after every intent settles, the local mirror
// must equal what a fresh fetch from the backend returns.
func TestDispatcherConvergesWithBackend(t *testing.T) {
	backend := boardtest.New()
	backend.SeedTasks(
		domain.Task{ID: "t1", CaseNumber: "1/24", Title: "første sak", Status: domain.StatusInProgress},
		domain.Task{ID: "t2", CaseNumber: "2/24", Title: "andre sak", Status: domain.StatusInProgress},
	)
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	api := client.New(srv.URL, 5*time.Second, logger)
	d := NewDispatcher(NewStore(), api, &recordingNotifier{}, logger)
	defer d.Close()

	d.Refresh()
	settle(t, d)
	assertOrder(t, d.Store(), "t1", "t2")

	title := "omdøpt sak"
	d.Update("t1", domain.TaskPatch{Title: &title})
	d.ChangeStatus("t2", domain.StatusStopped)
	settle(t, d)

	assertMirrorsBackend(t, d.Store(), backend)

	task, _ := d.Store().Get("t2")
	if task.Status != domain.StatusStopped {
		t.Fatalf("status not converged: %q", task.Status)
	}
}

func TestDispatcherServerNormalizationWins(t *testing.T) {
	backend := boardtest.New()
	backend.SeedTasks(domain.Task{ID: "t1", CaseNumber: "1/24", Title: "sak"})
	backend.Normalize = func(task domain.Task) domain.Task {
		task.Title = task.Title + " (normalisert)"
		return task
	}
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	api := client.New(srv.URL, 5*time.Second, logger)
	d := NewDispatcher(NewStore(), api, &recordingNotifier{}, logger)
	defer d.Close()

	d.Refresh()
	settle(t, d)

	title := "gjettet"
	d.Update("t1", domain.TaskPatch{Title: &title})
	settle(t, d)

	task, _ := d.Store().Get("t1")
	if task.Title != "gjettet (normalisert)" {
		t.Fatalf("server rewrite must win, got %q", task.Title)
	}
	assertMirrorsBackend(t, d.Store(), backend)
}

func TestDispatcherRollsBackWhenBackendRejects(t *testing.T) {
	backend := boardtest.New()
	backend.SeedTasks(domain.Task{ID: "t1", CaseNumber: "1/24", Title: "sak"})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	api := client.New(srv.URL, 5*time.Second, logger)
	notifier := &recordingNotifier{}
	d := NewDispatcher(NewStore(), api, notifier, logger)
	defer d.Close()

	d.Refresh()
	settle(t, d)

	backend.FailNext("updateTask", http.StatusInternalServerError)
	title := "avvist"
	d.Update("t1", domain.TaskPatch{Title: &title})
	settle(t, d)

	task, _ := d.Store().Get("t1")
	if task.Title != "sak" {
		t.Fatalf("rejected edit must roll back, got %q", task.Title)
	}
	if notifier.failureCount() != 1 {
		t.Fatalf("expected 1 failure notification, got %d", notifier.failureCount())
	}
	assertMirrorsBackend(t, d.Store(), backend)
}

func assertMirrorsBackend(t *testing.T, store *Store, backend *boardtest.Server) {
	t.Helper()
	local := store.Tasks()
	remote := backend.Tasks()
	if !reflect.DeepEqual(local, remote) {
		t.Fatalf("mirror diverged from backend:\nlocal:  %+v\nremote: %+v", local, remote)
	}
}
