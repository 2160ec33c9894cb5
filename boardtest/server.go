// Package boardtest provides an in-memory implementation of the
// Task/Meeting service HTTP contract. Tests run the client and the
// board against it instead of a live backend, and the fixture command
// serves it on a local port during UI development.
package boardtest

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"innoboard/domain"
)

// Fake docx payload; real documents are zip archives, so tests only
// assert on the PK magic and the download plumbing.
var documentStub = []byte("PK\x03\x04innoboard-document-stub")

// importBatch is what a nettskjema import run produces.
var importBatch = []domain.TaskFields{
	{
		Title: "Bærekraftig finans", Owner: "Nettskjema",
		Description: "importert fra nettskjema", RelevanceForBI: "-",
		NeedForCourse: "-", TargetGroup: "-", GrowthPotential: "-",
		FacultyResources: "-", Stage: domain.StageIdeaDescription,
	},
	{
		Title: "Digital etikk", Owner: "Nettskjema",
		Description: "importert fra nettskjema", RelevanceForBI: "-",
		NeedForCourse: "-", TargetGroup: "-", GrowthPotential: "-",
		FacultyResources: "-", Stage: domain.StageIdeaDescription,
	},
}

type failure struct {
	op     string
	status int
}

// Server is the in-memory service. All exported methods are safe for
// concurrent use; handlers and test setup share one mutex.
type Server struct {
	mu       sync.Mutex
	tasks    []domain.Task
	meetings []domain.Meeting
	failures []failure

	// Normalize, when set, rewrites every task record the server is
	// about to return from a create or update. Tests use it to exercise
	// the server-wins reconciliation rule.
	Normalize func(domain.Task) domain.Task

	e *echo.Echo
}

// New creates an empty server with all routes registered.
func New() *Server {
	s := &Server{}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/tasks", s.listTasks)
	e.POST("/tasks", s.createTask)
	e.PUT("/tasks/:id", s.updateTask)
	e.DELETE("/tasks/:id", s.deleteTask)
	e.PUT("/tasks/:id/status", s.updateTaskStatus)
	e.POST("/tasks/:id/attachments", s.uploadAttachment)
	e.POST("/tasks/reorder", s.reorderTasks)
	e.GET("/tasks/generate_report", s.generateTaskReport)
	e.POST("/import-nettskjema", s.importNettskjema)

	e.GET("/meetings", s.listMeetings)
	e.POST("/meetings", s.createMeeting)
	e.DELETE("/meetings/:id", s.deleteMeeting)
	e.POST("/meetings/:id/tasks", s.attachTask)
	e.DELETE("/meetings/:id/tasks/:taskId", s.detachTask)
	e.PUT("/meetings/:id/tasks/:taskId", s.setMinutes)
	e.GET("/meetings/:id/generate_report", s.generateMeetingReport)
	e.GET("/meetings/:id/generate_minutes", s.generateMeetingMinutes)

	s.e = e
	return s
}

// Handler exposes the service as an http.Handler for httptest.
func (s *Server) Handler() http.Handler { return s.e }

// Start serves on addr and blocks. Used by the fixture command.
func (s *Server) Start(addr string) error { return s.e.Start(addr) }

// FailNext forces the next request handled by op to fail with status.
// Queued failures are consumed in order, one per matching request.
func (s *Server) FailNext(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{op: op, status: status})
}

// SeedTasks loads tasks as the canonical server state.
func (s *Server) SeedTasks(tasks ...domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = s.tasks[:0]
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.tasks = append(s.tasks, t.Clone())
	}
	domain.SortTasksByCaseNumber(s.tasks)
}

// Tasks returns a copy of the current canonical task list.
func (s *Server) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Meetings returns a copy of the current meetings.
func (s *Server) Meetings() []domain.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Meeting, len(s.meetings))
	for i, m := range s.meetings {
		out[i] = m.Clone()
	}
	return out
}

// takeFailure pops a queued failure for op, if any.
func (s *Server) takeFailure(op string) (int, bool) {
	for i, f := range s.failures {
		if f.op == op {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			return f.status, true
		}
	}
	return 0, false
}

func (s *Server) failed(c echo.Context, op string) bool {
	if status, ok := s.takeFailure(op); ok {
		_ = c.JSON(status, map[string]string{"error": fmt.Sprintf("%s forced to fail", op)})
		return true
	}
	return false
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Server) taskIndex(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) meetingIndex(id string) int {
	for i, m := range s.meetings {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) normalize(t domain.Task) domain.Task {
	if s.Normalize != nil {
		return s.Normalize(t)
	}
	return t
}

func (s *Server) listTasks(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "listTasks") {
		return nil
	}
	return c.JSON(http.StatusOK, cloneTasks(s.tasks))
}

func (s *Server) createTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "createTask") {
		return nil
	}
	var fields domain.TaskFields
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := domain.Validate(fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	task := domain.Task{
		ID:               uuid.NewString(),
		Title:            fields.Title,
		Owner:            fields.Owner,
		Description:      fields.Description,
		RelevanceForBI:   fields.RelevanceForBI,
		NeedForCourse:    fields.NeedForCourse,
		TargetGroup:      fields.TargetGroup,
		GrowthPotential:  fields.GrowthPotential,
		FacultyResources: fields.FacultyResources,
		Stage:            fields.Stage,
		Status:           domain.StatusInProgress,
	}
	task = s.normalize(task)
	s.tasks = append(s.tasks, task)
	domain.SortTasksByCaseNumber(s.tasks)
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "updateTask") {
		return nil
	}
	i := s.taskIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	var patch domain.TaskPatch
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	patch.ApplyTo(&s.tasks[i])
	s.tasks[i] = s.normalize(s.tasks[i])
	task := s.tasks[i].Clone()
	domain.SortTasksByCaseNumber(s.tasks)
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "deleteTask") {
		return nil
	}
	i := s.taskIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) updateTaskStatus(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "updateTaskStatus") {
		return nil
	}
	i := s.taskIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	var body struct {
		Status domain.Status `json:"status"`
	}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	s.tasks[i].Status = body.Status
	s.tasks[i] = s.normalize(s.tasks[i])
	return c.JSON(http.StatusOK, s.tasks[i].Clone())
}

func (s *Server) uploadAttachment(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "uploadAttachment") {
		return nil
	}
	i := s.taskIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing file"})
	}
	ref := domain.Attachment{
		Filename: file.Filename,
		URL:      "/files/" + s.tasks[i].ID + "/" + file.Filename,
	}
	s.tasks[i].Attachments = append(s.tasks[i].Attachments, ref)
	return c.JSON(http.StatusCreated, ref)
}

func (s *Server) reorderTasks(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "reorderTasks") {
		return nil
	}
	var body struct {
		TaskIDs []string `json:"taskIds"`
	}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	reordered := make([]domain.Task, 0, len(s.tasks))
	taken := make(map[string]bool, len(body.TaskIDs))
	for _, id := range body.TaskIDs {
		if i := s.taskIndex(id); i >= 0 && !taken[id] {
			reordered = append(reordered, s.tasks[i])
			taken[id] = true
		}
	}
	for _, t := range s.tasks {
		if !taken[t.ID] {
			reordered = append(reordered, t)
		}
	}
	s.tasks = reordered
	return c.JSON(http.StatusOK, cloneTasks(s.tasks))
}

func (s *Server) generateTaskReport(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "generateTaskReport") {
		return nil
	}
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", documentStub)
}

func (s *Server) importNettskjema(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "importNettskjema") {
		return nil
	}
	imported := make([]domain.Task, 0, len(importBatch))
	for _, fields := range importBatch {
		task := domain.Task{
			ID:               uuid.NewString(),
			Title:            fields.Title,
			Owner:            fields.Owner,
			Description:      fields.Description,
			RelevanceForBI:   fields.RelevanceForBI,
			NeedForCourse:    fields.NeedForCourse,
			TargetGroup:      fields.TargetGroup,
			GrowthPotential:  fields.GrowthPotential,
			FacultyResources: fields.FacultyResources,
			Stage:            fields.Stage,
			Status:           domain.StatusInProgress,
		}
		s.tasks = append(s.tasks, task)
		imported = append(imported, task)
	}
	domain.SortTasksByCaseNumber(s.tasks)
	return c.JSON(http.StatusOK, map[string][]domain.Task{"imported_tasks": imported})
}

func (s *Server) listMeetings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "listMeetings") {
		return nil
	}
	out := make([]domain.Meeting, len(s.meetings))
	for i, m := range s.meetings {
		out[i] = m.Clone()
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createMeeting(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "createMeeting") {
		return nil
	}
	var fields domain.MeetingFields
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := domain.Validate(fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	meeting := domain.Meeting{
		ID:       uuid.NewString(),
		Number:   fields.Number,
		Date:     fields.Date,
		Location: fields.Location,
	}
	s.meetings = append(s.meetings, meeting)
	return c.JSON(http.StatusCreated, meeting)
}

func (s *Server) deleteMeeting(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "deleteMeeting") {
		return nil
	}
	i := s.meetingIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	// Agenda tasks are weak references; deleting the meeting leaves
	// every task in place.
	s.meetings = append(s.meetings[:i], s.meetings[i+1:]...)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) attachTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "attachTaskToMeeting") {
		return nil
	}
	i := s.meetingIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	var body struct {
		TaskID string `json:"task_id"`
	}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.TaskID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if s.taskIndex(body.TaskID) < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	if s.meetings[i].AgendaIndex(body.TaskID) >= 0 {
		return c.NoContent(http.StatusNoContent)
	}
	s.meetings[i].Agenda = append(s.meetings[i].Agenda, domain.AgendaEntry{TaskID: body.TaskID})
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) detachTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "detachTaskFromMeeting") {
		return nil
	}
	i := s.meetingIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	j := s.meetings[i].AgendaIndex(c.Param("taskId"))
	if j < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not on agenda"})
	}
	s.meetings[i].Agenda = append(s.meetings[i].Agenda[:j], s.meetings[i].Agenda[j+1:]...)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setMinutes(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "setMeetingMinutes") {
		return nil
	}
	i := s.meetingIndex(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	taskID := c.Param("taskId")
	j := s.meetings[i].AgendaIndex(taskID)
	if j < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not on agenda"})
	}
	var body struct {
		Minutes string `json:"minutes"`
	}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	s.meetings[i].Agenda[j].Minutes = body.Minutes

	// Mirror onto the task's minutes history.
	if k := s.taskIndex(taskID); k >= 0 {
		task := &s.tasks[k]
		updated := false
		for n := range task.Minutes {
			if task.Minutes[n].MeetingID == s.meetings[i].ID {
				task.Minutes[n].Text = body.Minutes
				updated = true
				break
			}
		}
		if !updated {
			task.Minutes = append(task.Minutes, domain.MinuteEntry{MeetingID: s.meetings[i].ID, Text: body.Minutes})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) generateMeetingReport(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "generateMeetingReport") {
		return nil
	}
	if s.meetingIndex(c.Param("id")) < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", documentStub)
}

func (s *Server) generateMeetingMinutes(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed(c, "generateMeetingMinutes") {
		return nil
	}
	if s.meetingIndex(c.Param("id")) < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	}
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", documentStub)
}
