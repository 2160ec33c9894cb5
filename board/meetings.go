package board

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"innoboard/domain"
)

// MeetingService is the remote call surface for meeting operations.
type MeetingService interface {
	ListMeetings(ctx context.Context) ([]domain.Meeting, error)
	CreateMeeting(ctx context.Context, fields domain.MeetingFields) (domain.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	AttachTaskToMeeting(ctx context.Context, meetingID, taskID string) error
	DetachTaskFromMeeting(ctx context.Context, meetingID, taskID string) error
	SetMeetingMinutes(ctx context.Context, meetingID, taskID, text string) error
}

// Meetings mirrors the scheduled meetings. Unlike the task store there
// is no optimistic phase: every local mutation happens only after the
// server confirmed it, so there is nothing to roll back. Meetings hold
// weak references to tasks; none of these operations ever touches a
// task record.
type Meetings struct {
	mu       sync.RWMutex
	svc      MeetingService
	notify   Notifier
	logger   *log.Logger
	meetings []domain.Meeting
}

// NewMeetings creates an empty meeting mirror.
func NewMeetings(svc MeetingService, notify Notifier, logger *log.Logger) *Meetings {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Meetings{svc: svc, notify: notify, logger: logger}
}

// All returns a copy of the mirrored meetings.
func (m *Meetings) All() []domain.Meeting {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Meeting, len(m.meetings))
	for i, meeting := range m.meetings {
		out[i] = meeting.Clone()
	}
	return out
}

// Get returns a copy of one meeting.
func (m *Meetings) Get(id string) (domain.Meeting, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexLocked(id); i >= 0 {
		return m.meetings[i].Clone(), true
	}
	return domain.Meeting{}, false
}

func (m *Meetings) indexLocked(id string) int {
	for i, meeting := range m.meetings {
		if meeting.ID == id {
			return i
		}
	}
	return -1
}

// Refresh replaces the mirror with a fresh fetch.
func (m *Meetings) Refresh(ctx context.Context) error {
	meetings, err := m.svc.ListMeetings(ctx)
	if err != nil {
		m.notify.Failure("could not fetch meetings", err)
		return err
	}
	m.mu.Lock()
	m.meetings = m.meetings[:0]
	for _, meeting := range meetings {
		m.meetings = append(m.meetings, meeting.Clone())
	}
	m.mu.Unlock()
	return nil
}

// Add schedules a meeting and appends the server-assigned record.
func (m *Meetings) Add(ctx context.Context, fields domain.MeetingFields) error {
	if err := domain.Validate(fields); err != nil {
		return err
	}
	meeting, err := m.svc.CreateMeeting(ctx, fields)
	if err != nil {
		m.notify.Failure("could not add meeting", err)
		return err
	}
	m.mu.Lock()
	m.meetings = append(m.meetings, meeting)
	m.mu.Unlock()
	m.notify.Success("meeting added")
	return nil
}

// Delete removes a meeting. Tasks on its agenda keep existing.
func (m *Meetings) Delete(ctx context.Context, id string) error {
	if err := m.svc.DeleteMeeting(ctx, id); err != nil {
		m.notify.Failure("could not delete meeting", err)
		return err
	}
	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.meetings = append(m.meetings[:i], m.meetings[i+1:]...)
	}
	m.mu.Unlock()
	m.notify.Success("meeting deleted")
	return nil
}

// AttachTask puts a task on a meeting's agenda.
func (m *Meetings) AttachTask(ctx context.Context, meetingID, taskID string) error {
	if err := m.svc.AttachTaskToMeeting(ctx, meetingID, taskID); err != nil {
		m.notify.Failure("could not add task to meeting", err)
		return err
	}
	m.mu.Lock()
	if i := m.indexLocked(meetingID); i >= 0 && m.meetings[i].AgendaIndex(taskID) < 0 {
		m.meetings[i].Agenda = append(m.meetings[i].Agenda, domain.AgendaEntry{TaskID: taskID})
	}
	m.mu.Unlock()
	m.notify.Success("task added to meeting")
	return nil
}

// DetachTask takes a task off a meeting's agenda without touching the
// task itself.
func (m *Meetings) DetachTask(ctx context.Context, meetingID, taskID string) error {
	if err := m.svc.DetachTaskFromMeeting(ctx, meetingID, taskID); err != nil {
		m.notify.Failure("could not remove task from meeting", err)
		return err
	}
	m.mu.Lock()
	if i := m.indexLocked(meetingID); i >= 0 {
		if j := m.meetings[i].AgendaIndex(taskID); j >= 0 {
			m.meetings[i].Agenda = append(m.meetings[i].Agenda[:j], m.meetings[i].Agenda[j+1:]...)
		}
	}
	m.mu.Unlock()
	m.notify.Success("task removed from meeting")
	return nil
}

// SaveMinutes stores the minutes text for one agenda entry.
func (m *Meetings) SaveMinutes(ctx context.Context, meetingID, taskID, text string) error {
	if err := m.svc.SetMeetingMinutes(ctx, meetingID, taskID, text); err != nil {
		m.notify.Failure("could not save minutes", err)
		return err
	}
	m.mu.Lock()
	if i := m.indexLocked(meetingID); i >= 0 {
		if j := m.meetings[i].AgendaIndex(taskID); j >= 0 {
			m.meetings[i].Agenda[j].Minutes = text
		}
	}
	m.mu.Unlock()
	m.notify.Success("minutes saved")
	return nil
}
