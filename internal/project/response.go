package project

// Response is an entry of an issue's merged timeline: either an
// IssueComment or a StatusUpdate. Both carry an author and a timestamp,
// which is all the merge needs.
type Response interface {
	EventID() string
	Attribution() string
	Timestamp() int64
	response()
}

func (c IssueComment) EventID() string     { return c.ID }
func (c IssueComment) Attribution() string { return c.Author }
func (c IssueComment) Timestamp() int64    { return c.CreatedAt }
func (IssueComment) response()             {}

func (u StatusUpdate) EventID() string     { return u.ID }
func (u StatusUpdate) Attribution() string { return u.Author }
func (u StatusUpdate) Timestamp() int64    { return u.CreatedAt }
func (StatusUpdate) response()             {}
