package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Stage is the lifecycle phase of a board item. The values are the
// display strings the backend stores and returns verbatim.
type Stage string

const (
	StageIdeaDescription   Stage = "Idea Description"
	StageBusinessCase      Stage = "Business Case"
	StageCourseDescription Stage = "Course Description"
	StageCompleted         Stage = "Completed"
)

// Status is the outcome label of a board item, orthogonal to its stage.
type Status string

const (
	StatusInProgress        Status = "In Progress"
	StatusCompletedApproved Status = "Completed and Approved"
	StatusStopped           Status = "Stopped"
	StatusNotApproved       Status = "Not Approved"
)

// Attachment references a file stored by the backend.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// MinuteEntry is a per-meeting minutes note attached to a task.
type MinuteEntry struct {
	MeetingID string `json:"meetingId"`
	Text      string `json:"text"`
}

// Task represents a single innovation-board case item.
type Task struct {
	ID               string        `json:"id"`
	CaseNumber       string        `json:"caseNumber,omitempty"`
	Title            string        `json:"title"`
	Owner            string        `json:"owner"`
	Description      string        `json:"description,omitempty"`
	RelevanceForBI   string        `json:"relevanceForBI,omitempty"`
	NeedForCourse    string        `json:"needForCourse,omitempty"`
	TargetGroup      string        `json:"targetGroup,omitempty"`
	GrowthPotential  string        `json:"growthPotential,omitempty"`
	FacultyResources string        `json:"facultyResources,omitempty"`
	Stage            Stage         `json:"stage"`
	Status           Status        `json:"status,omitempty"`
	Attachments      []Attachment  `json:"attachments,omitempty"`
	Minutes          []MinuteEntry `json:"minutes,omitempty"`
}

// Clone returns a deep copy. Rollback snapshots must not alias the
// slices of the record still held by the store.
func (t Task) Clone() Task {
	c := t
	if t.Attachments != nil {
		c.Attachments = make([]Attachment, len(t.Attachments))
		copy(c.Attachments, t.Attachments)
	}
	if t.Minutes != nil {
		c.Minutes = make([]MinuteEntry, len(t.Minutes))
		copy(c.Minutes, t.Minutes)
	}
	return c
}

// TaskFields carries the create-form payload. Every field is required,
// matching the form the browser client submits.
type TaskFields struct {
	Title            string `json:"title" validate:"required"`
	Owner            string `json:"owner" validate:"required"`
	Description      string `json:"description" validate:"required"`
	RelevanceForBI   string `json:"relevanceForBI" validate:"required"`
	NeedForCourse    string `json:"needForCourse" validate:"required"`
	TargetGroup      string `json:"targetGroup" validate:"required"`
	GrowthPotential  string `json:"growthPotential" validate:"required"`
	FacultyResources string `json:"facultyResources" validate:"required"`
	Stage            Stage  `json:"stage" validate:"required"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	CaseNumber       *string `json:"caseNumber,omitempty"`
	Title            *string `json:"title,omitempty"`
	Owner            *string `json:"owner,omitempty"`
	Description      *string `json:"description,omitempty"`
	RelevanceForBI   *string `json:"relevanceForBI,omitempty"`
	NeedForCourse    *string `json:"needForCourse,omitempty"`
	TargetGroup      *string `json:"targetGroup,omitempty"`
	GrowthPotential  *string `json:"growthPotential,omitempty"`
	FacultyResources *string `json:"facultyResources,omitempty"`
	Stage            *Stage  `json:"stage,omitempty"`
}

// ApplyTo overlays the non-nil patch fields onto t.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.CaseNumber != nil {
		t.CaseNumber = *p.CaseNumber
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Owner != nil {
		t.Owner = *p.Owner
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.RelevanceForBI != nil {
		t.RelevanceForBI = *p.RelevanceForBI
	}
	if p.NeedForCourse != nil {
		t.NeedForCourse = *p.NeedForCourse
	}
	if p.TargetGroup != nil {
		t.TargetGroup = *p.TargetGroup
	}
	if p.GrowthPotential != nil {
		t.GrowthPotential = *p.GrowthPotential
	}
	if p.FacultyResources != nil {
		t.FacultyResources = *p.FacultyResources
	}
	if p.Stage != nil {
		t.Stage = *p.Stage
	}
}

// caseNumberKey extracts the numeric prefix before the first '/' of a
// case number like "3/24". The second return is false when there is no
// parseable numeric prefix.
func caseNumberKey(caseNumber string) (int, bool) {
	s := caseNumber
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortTasksByCaseNumber orders tasks by the numeric prefix of their
// case number, ascending. Tasks without a parseable case number sort
// after numbered ones. The sort is stable, so ties and unnumbered
// tasks keep their relative order and re-sorting an already sorted
// slice is a no-op.
func SortTasksByCaseNumber(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ki, oki := caseNumberKey(tasks[i].CaseNumber)
		kj, okj := caseNumberKey(tasks[j].CaseNumber)
		if oki && okj {
			return ki < kj
		}
		return oki && !okj
	})
}
