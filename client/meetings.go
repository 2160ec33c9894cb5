package client

import (
	"context"
	"net/http"

	"innoboard/domain"
)

// ListMeetings fetches all scheduled meetings.
func (c *Client) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	if err := c.doJSON(ctx, "listMeetings", http.MethodGet, "/meetings", nil, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// CreateMeeting schedules a meeting. The server assigns the identifier.
func (c *Client) CreateMeeting(ctx context.Context, fields domain.MeetingFields) (domain.Meeting, error) {
	var meeting domain.Meeting
	if err := c.doJSON(ctx, "createMeeting", http.MethodPost, "/meetings", fields, &meeting); err != nil {
		return domain.Meeting{}, err
	}
	return meeting, nil
}

// DeleteMeeting removes a meeting. Tasks on its agenda are untouched.
func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	return c.doJSON(ctx, "deleteMeeting", http.MethodDelete, "/meetings/"+pathEscape(id), nil, nil)
}

// AttachTaskToMeeting puts an existing task on a meeting's agenda.
func (c *Client) AttachTaskToMeeting(ctx context.Context, meetingID, taskID string) error {
	body := struct {
		TaskID string `json:"task_id"`
	}{TaskID: taskID}
	return c.doJSON(ctx, "attachTaskToMeeting", http.MethodPost, "/meetings/"+pathEscape(meetingID)+"/tasks", body, nil)
}

// DetachTaskFromMeeting takes a task off a meeting's agenda. The task
// itself continues to exist.
func (c *Client) DetachTaskFromMeeting(ctx context.Context, meetingID, taskID string) error {
	return c.doJSON(ctx, "detachTaskFromMeeting", http.MethodDelete, "/meetings/"+pathEscape(meetingID)+"/tasks/"+pathEscape(taskID), nil, nil)
}

// SetMeetingMinutes stores the minutes text for one task on a
// meeting's agenda.
func (c *Client) SetMeetingMinutes(ctx context.Context, meetingID, taskID, text string) error {
	body := struct {
		Minutes string `json:"minutes"`
	}{Minutes: text}
	return c.doJSON(ctx, "setMeetingMinutes", http.MethodPut, "/meetings/"+pathEscape(meetingID)+"/tasks/"+pathEscape(taskID), body, nil)
}

// GenerateMeetingReport fetches the meeting papers document.
func (c *Client) GenerateMeetingReport(ctx context.Context, meetingID string) ([]byte, error) {
	return c.doBytes(ctx, "generateMeetingReport", "/meetings/"+pathEscape(meetingID)+"/generate_report")
}

// GenerateMeetingMinutes fetches the meeting minutes document.
func (c *Client) GenerateMeetingMinutes(ctx context.Context, meetingID string) ([]byte, error) {
	return c.doBytes(ctx, "generateMeetingMinutes", "/meetings/"+pathEscape(meetingID)+"/generate_minutes")
}
