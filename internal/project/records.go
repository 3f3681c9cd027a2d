package project

import (
	"encoding/json"
	"fmt"
)

// RepositoryRecord is one repository announcement. Announcements are never
// merged: the same owner announcing the same name twice yields two records.
type RepositoryRecord struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CreatedAt   int64  `json:"created_at"`
}

// IssueRecord is an issue with its derived status. Status is never carried
// by the creating event; it is resolved from status updates.
type IssueRecord struct {
	ID         string `json:"id"`
	Repository string `json:"repository,omitempty"`
	Author     string `json:"author"`
	CreatedAt  int64  `json:"created_at"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     Status `json:"status"`
}

// IssueComment is a reply on an issue. Anyone may comment.
type IssueComment struct {
	ID        string `json:"id"`
	Issue     string `json:"issue"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"created_at"`
	Text      string `json:"text"`
}

// StatusUpdate is a request to move an issue to a status.
type StatusUpdate struct {
	ID        string `json:"id"`
	Issue     string `json:"issue"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"created_at"`
	Status    Status `json:"status"`
}

// PatchRecord is one patch submission. Resubmitting under the same name
// yields another record.
type PatchRecord struct {
	ID          string `json:"id"`
	Repository  string `json:"repository"`
	Author      string `json:"author"`
	CreatedAt   int64  `json:"created_at"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Diff        string `json:"diff"`
}

// ProfileRecord is an author's self-asserted metadata.
type ProfileRecord struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	CreatedAt   int64  `json:"created_at"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Status is the state of an issue. The zero value is Open, the implicit
// state of an issue nobody authorized has touched.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
	StatusClosedCompleted
)

var statusNames = [...]string{"Open", "Closed", "ClosedCompleted"}

// Names written by the deployed client. Readers accept both spellings.
var statusWireNames = [...]string{"Open", "Close", "CloseCompleted"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, ok := lookupStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", b)
	}
	*s = v
	return nil
}

func lookupStatus(name string) (Status, bool) {
	for i := range statusNames {
		if name == statusNames[i] || name == statusWireNames[i] {
			return Status(i), true
		}
	}
	return 0, false
}

// ParseStatus decodes the content of a status update event: a JSON string.
func ParseStatus(content string) (Status, error) {
	var name string
	if err := json.Unmarshal([]byte(content), &name); err != nil {
		return 0, fmt.Errorf("status content is not a JSON string: %w", err)
	}
	s, ok := lookupStatus(name)
	if !ok {
		return 0, fmt.Errorf("unknown status %q", name)
	}
	return s, nil
}

// Content encodes s as status update content, using the names the deployed
// client writes.
func (s Status) Content() string {
	name := statusWireNames[StatusOpen]
	if s >= 0 && int(s) < len(statusWireNames) {
		name = statusWireNames[s]
	}
	b, _ := json.Marshal(name)
	return string(b)
}
