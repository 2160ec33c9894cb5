package domain

import "time"

// AgendaEntry links a meeting to one task on its agenda together with
// the minutes written for it. The meeting does not own the task; the
// entry survives even after the task leaves the active agenda so the
// minutes history stays intact.
type AgendaEntry struct {
	TaskID  string `json:"taskId"`
	Minutes string `json:"minutes,omitempty"`
}

// Meeting represents a scheduled board meeting.
type Meeting struct {
	ID       string        `json:"id"`
	Number   string        `json:"number"`
	Date     time.Time     `json:"date"`
	Location string        `json:"location"`
	Agenda   []AgendaEntry `json:"agenda,omitempty"`
}

// Clone returns a deep copy of the meeting.
func (m Meeting) Clone() Meeting {
	c := m
	if m.Agenda != nil {
		c.Agenda = make([]AgendaEntry, len(m.Agenda))
		copy(c.Agenda, m.Agenda)
	}
	return c
}

// AgendaIndex returns the agenda position of taskID, or -1.
func (m Meeting) AgendaIndex(taskID string) int {
	for i, e := range m.Agenda {
		if e.TaskID == taskID {
			return i
		}
	}
	return -1
}

// DefaultMeetingLocation is prefilled by the meeting form.
const DefaultMeetingLocation = "A4Y-117"

// MeetingFields carries the create-meeting payload.
type MeetingFields struct {
	Number   string    `json:"number" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Location string    `json:"location" validate:"required"`
}
