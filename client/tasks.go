package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"innoboard/domain"
)

// ListTasks fetches every task from the backend in canonical order.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.doJSON(ctx, "listTasks", http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask submits a new task. The server assigns the identifier and
// returns the full record.
func (c *Client) CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	var task domain.Task
	if err := c.doJSON(ctx, "createTask", http.MethodPost, "/tasks", fields, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update and returns the server's
// authoritative version of the record.
func (c *Client) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	var task domain.Task
	if err := c.doJSON(ctx, "updateTask", http.MethodPut, "/tasks/"+pathEscape(id), patch, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes the task with the given identifier.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, "deleteTask", http.MethodDelete, "/tasks/"+pathEscape(id), nil, nil)
}

// UpdateTaskStatus sets the completion status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	body := struct {
		Status domain.Status `json:"status"`
	}{Status: status}
	var task domain.Task
	if err := c.doJSON(ctx, "updateTaskStatus", http.MethodPut, "/tasks/"+pathEscape(id)+"/status", body, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ReorderTasks submits a new ordering and returns the canonical
// post-reorder task list as the server sees it.
func (c *Client) ReorderTasks(ctx context.Context, ids []string) ([]domain.Task, error) {
	body := struct {
		TaskIDs []string `json:"taskIds"`
	}{TaskIDs: ids}
	var tasks []domain.Task
	if err := c.doJSON(ctx, "reorderTasks", http.MethodPost, "/tasks/reorder", body, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UploadAttachment uploads a file for the given task and returns the
// stored reference. The file must exist server-side before the task
// record can point at it, so there is no optimistic variant of this.
func (c *Client) UploadAttachment(ctx context.Context, id, filename string, data io.Reader) (domain.Attachment, error) {
	const op = "uploadAttachment"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.Attachment{}, &Error{Op: op, Kind: KindRejected, Message: "encode upload", Err: err}
	}
	if _, err := io.Copy(part, data); err != nil {
		return domain.Attachment{}, &Error{Op: op, Kind: KindRejected, Message: "encode upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return domain.Attachment{}, &Error{Op: op, Kind: KindRejected, Message: "encode upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/tasks/"+pathEscape(id)+"/attachments"), &buf)
	if err != nil {
		return domain.Attachment{}, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(op, req)
	if err != nil {
		return domain.Attachment{}, err
	}
	defer resp.Body.Close()

	var ref domain.Attachment
	if err := decodeJSON(resp.Body, &ref); err != nil {
		return domain.Attachment{}, &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return ref, nil
}

// GenerateTaskReport fetches the case-database report document.
func (c *Client) GenerateTaskReport(ctx context.Context) ([]byte, error) {
	return c.doBytes(ctx, "generateTaskReport", "/tasks/generate_report")
}

// ImportNettskjema triggers a server-side import of submitted external
// forms and returns how many tasks were imported.
func (c *Client) ImportNettskjema(ctx context.Context) (int, error) {
	var resp struct {
		ImportedTasks []domain.Task `json:"imported_tasks"`
	}
	if err := c.doJSON(ctx, "importNettskjema", http.MethodPost, "/import-nettskjema", nil, &resp); err != nil {
		return 0, err
	}
	return len(resp.ImportedTasks), nil
}
