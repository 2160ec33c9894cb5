package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"innoboard/boardtest"
	"innoboard/domain"
)

func newTestClient(t *testing.T) (*Client, *boardtest.Server) {
	t.Helper()
	backend := boardtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return New(srv.URL, 5*time.Second, logger), backend
}

func validFields(title string) domain.TaskFields {
	return domain.TaskFields{
		Title: title, Owner: "Kari Nordmann", Description: "beskrivelse",
		RelevanceForBI: "relevans", NeedForCourse: "behov", TargetGroup: "målgruppe",
		GrowthPotential: "potensial", FacultyResources: "ressurser",
		Stage: domain.StageIdeaDescription,
	}
}

func TestTaskLifecycle(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, validFields("Ny idé"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("server must assign an id")
	}
	if created.Status != domain.StatusInProgress {
		t.Fatalf("new tasks start in progress, got %q", created.Status)
	}

	newTitle := "Revidert idé"
	updated, err := c.UpdateTask(ctx, created.ID, domain.TaskPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != newTitle || updated.Owner != created.Owner {
		t.Fatalf("patch semantics broken: %+v", updated)
	}

	updated, err = c.UpdateTaskStatus(ctx, created.ID, domain.StatusStopped)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if updated.Status != domain.StatusStopped {
		t.Fatalf("status not applied: %q", updated.Status)
	}

	tasks, err := c.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", tasks)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := backend.Tasks(); len(got) != 0 {
		t.Fatalf("task not deleted server-side: %+v", got)
	}
}

func TestListTasksReturnsCanonicalOrder(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SeedTasks(
		domain.Task{ID: "1", CaseNumber: "2/24", Title: "andre"},
		domain.Task{ID: "2", CaseNumber: "1/24", Title: "første"},
	)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "2" || tasks[1].ID != "1" {
		t.Fatalf("expected case-number order, got %+v", tasks)
	}
}

func TestUpdateUnknownTaskIsNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	title := "x"
	_, err := c.UpdateTask(context.Background(), "missing", domain.TaskPatch{Title: &title})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ce.Op != "updateTask" || ce.Status != http.StatusNotFound {
		t.Fatalf("unexpected error detail: %+v", ce)
	}
}

func TestForcedFailureIsRejectedWithBodyMessage(t *testing.T) {
	c, backend := newTestClient(t)
	backend.FailNext("listTasks", http.StatusInternalServerError)

	_, err := c.ListTasks(context.Background())
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.Kind != KindRejected || ce.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected classification: %+v", ce)
	}
	if !strings.Contains(ce.Message, "forced to fail") {
		t.Fatalf("error body not surfaced: %q", ce.Message)
	}

	// The failure is consumed; the next call succeeds.
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("second list: %v", err)
	}
}

func TestUnreachableBackendIsTransport(t *testing.T) {
	srv := httptest.NewServer(boardtest.New().Handler())
	logger, _ := test.NewNullLogger()
	c := New(srv.URL, time.Second, logger)
	srv.Close()

	_, err := c.ListTasks(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestReorderTasksReturnsCanonicalList(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SeedTasks(
		domain.Task{ID: "a", CaseNumber: "1/24"},
		domain.Task{ID: "b", CaseNumber: "2/24"},
		domain.Task{ID: "c", CaseNumber: "3/24"},
	)

	tasks, err := c.ReorderTasks(context.Background(), []string{"c", "a"})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if len(tasks) != 3 || tasks[0].ID != "c" || tasks[1].ID != "a" || tasks[2].ID != "b" {
		t.Fatalf("unexpected canonical order: %+v", tasks)
	}
}

func TestUploadAttachmentStoresReference(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SeedTasks(domain.Task{ID: "t1", Title: "med vedlegg"})

	ref, err := c.UploadAttachment(context.Background(), "t1", "notat.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref.Filename != "notat.pdf" || ref.URL == "" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	tasks := backend.Tasks()
	if len(tasks[0].Attachments) != 1 || tasks[0].Attachments[0].Filename != "notat.pdf" {
		t.Fatalf("attachment not stored server-side: %+v", tasks[0].Attachments)
	}
}

func TestImportNettskjemaReturnsImportedCount(t *testing.T) {
	c, backend := newTestClient(t)

	n, err := c.ImportNettskjema(context.Background())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n == 0 {
		t.Fatal("expected imported tasks")
	}
	if got := len(backend.Tasks()); got != n {
		t.Fatalf("server has %d tasks, import reported %d", got, n)
	}
}

func TestGenerateTaskReportReturnsDocument(t *testing.T) {
	c, _ := newTestClient(t)

	data, err := c.GenerateTaskReport(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected a docx payload, got %q", data[:min(len(data), 8)])
	}
}

func TestMeetingLifecycle(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()
	backend.SeedTasks(domain.Task{ID: "t1", Title: "sak"})

	meeting, err := c.CreateMeeting(ctx, domain.MeetingFields{
		Number:   "3/24",
		Date:     time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC),
		Location: domain.DefaultMeetingLocation,
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if meeting.ID == "" || meeting.Location != domain.DefaultMeetingLocation {
		t.Fatalf("unexpected meeting: %+v", meeting)
	}

	if err := c.AttachTaskToMeeting(ctx, meeting.ID, "t1"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := c.SetMeetingMinutes(ctx, meeting.ID, "t1", "vedtatt"); err != nil {
		t.Fatalf("minutes: %v", err)
	}

	meetings, err := c.ListMeetings(ctx)
	if err != nil {
		t.Fatalf("list meetings: %v", err)
	}
	if len(meetings) != 1 || len(meetings[0].Agenda) != 1 || meetings[0].Agenda[0].Minutes != "vedtatt" {
		t.Fatalf("unexpected meetings: %+v", meetings)
	}
	// Minutes are mirrored onto the task's history.
	tasks := backend.Tasks()
	if len(tasks[0].Minutes) != 1 || tasks[0].Minutes[0].Text != "vedtatt" {
		t.Fatalf("minutes not mirrored onto task: %+v", tasks[0].Minutes)
	}

	data, err := c.GenerateMeetingReport(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("meeting report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("expected a docx payload")
	}
	if _, err := c.GenerateMeetingMinutes(ctx, meeting.ID); err != nil {
		t.Fatalf("meeting minutes: %v", err)
	}

	if err := c.DetachTaskFromMeeting(ctx, meeting.ID, "t1"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := c.DeleteMeeting(ctx, meeting.ID); err != nil {
		t.Fatalf("delete meeting: %v", err)
	}
	if got := backend.Meetings(); len(got) != 0 {
		t.Fatalf("meeting not deleted: %+v", got)
	}
	// Deleting the meeting never deletes the tasks it referenced.
	if got := backend.Tasks(); len(got) != 1 {
		t.Fatalf("task lost with meeting: %+v", got)
	}
}

func TestAttachTaskToUnknownMeetingIsNotFound(t *testing.T) {
	c, backend := newTestClient(t)
	backend.SeedTasks(domain.Task{ID: "t1"})

	err := c.AttachTaskToMeeting(context.Background(), "missing", "t1")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
