package project_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/testutil"
)

func TestParseStatus_AcceptsBothSpellings(t *testing.T) {
	tests := []struct {
		content string
		want    project.Status
	}{
		{`"Open"`, project.StatusOpen},
		{`"Close"`, project.StatusClosed},
		{`"Closed"`, project.StatusClosed},
		{`"CloseCompleted"`, project.StatusClosedCompleted},
		{`"ClosedCompleted"`, project.StatusClosedCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got, err := project.ParseStatus(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "Open", `"open"`, `{"status":"Open"}`, `"Reopened"`} {
		_, err := project.ParseStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatus_ContentUsesWireNames(t *testing.T) {
	assert.Equal(t, `"Open"`, project.StatusOpen.Content())
	assert.Equal(t, `"Close"`, project.StatusClosed.Content())
	assert.Equal(t, `"CloseCompleted"`, project.StatusClosedCompleted.Content())
}

func TestStatus_JSON(t *testing.T) {
	b, err := json.Marshal(project.IssueRecord{ID: "x", Status: project.StatusClosedCompleted})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"ClosedCompleted"`)

	var rec project.IssueRecord
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Close"}`), &rec))
	assert.Equal(t, project.StatusClosed, rec.Status)

	assert.Equal(t, "Status(9)", project.Status(9).String())
}

func TestCloseIssue_CommentFirstWhenNotBlank(t *testing.T) {
	drafts := project.CloseIssue("issue", true, "  fixed in abc123 \n")
	require.Len(t, drafts, 2)
	assert.Equal(t, event.KindIssueComment, drafts[0].Kind)
	assert.Equal(t, "fixed in abc123", drafts[0].Content)
	assert.Equal(t, event.KindIssueStatus, drafts[1].Kind)
	assert.Equal(t, `"CloseCompleted"`, drafts[1].Content)

	drafts = project.CloseIssue("issue", false, "   ")
	require.Len(t, drafts, 1)
	assert.Equal(t, `"Close"`, drafts[0].Content)

	drafts = project.ReopenIssue("issue", "")
	require.Len(t, drafts, 1)
	assert.Equal(t, `"Open"`, drafts[0].Content)
	assert.Equal(t, [][]string{{"e", "issue"}}, drafts[0].Tags)
}

func TestDrafts_ProjectBack(t *testing.T) {
	s := testutil.Signer(t, 7)

	d, err := project.NewIssue("repo-id", "  Crash on start ", "stack trace")
	require.NoError(t, err)
	rec, err := project.Issue(testutil.Sign(t, s, d, 5))
	require.NoError(t, err)
	assert.Equal(t, "Crash on start", rec.Title)
	assert.Equal(t, "repo-id", rec.Repository)

	_, err = project.NewIssue("repo-id", "", "x")
	assert.Equal(t, project.ErrCodeBlankField, project.StructuralCode(err))
	_, err = project.NewRepository("n", " ", "")
	assert.Equal(t, project.ErrCodeBlankField, project.StructuralCode(err))
	_, err = project.NewComment("issue", "\t")
	assert.Equal(t, project.ErrCodeBlankField, project.StructuralCode(err))
}

func TestLatestProfiles(t *testing.T) {
	alice := testutil.Signer(t, 1)
	bob := testutil.Signer(t, 2)

	old := testutil.Sign(t, alice, project.NewProfile("alice-old"), 10)
	cur := testutil.Sign(t, alice, project.NewProfile("alice"), 20)
	bobs := testutil.Sign(t, bob, event.Draft{Kind: event.KindProfile, Content: `{"display_name":"Bob","about":"x"}`}, 5)
	broken := testutil.Sign(t, bob, event.Draft{Kind: event.KindProfile, Content: "{"}, 99)

	got := project.LatestProfiles([]event.Event{cur, broken, old, bobs})

	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[alice.PublicKey()].Name)
	assert.Equal(t, "Bob", got[bob.PublicKey()].DisplayName)
	assert.Equal(t, "", got[bob.PublicKey()].Name)
}

func TestAllowList(t *testing.T) {
	a := project.NewAllowList("b", "", "a", "b")
	assert.Equal(t, []string{"a", "b"}, a.Authors())
	assert.True(t, a.Allows("a"))
	assert.False(t, a.Allows(""))
	assert.False(t, a.Allows("c"))

	var p project.Policy = project.PolicyFunc(func(k string) bool { return k == "c" })
	assert.True(t, p.Allows("c"))
}
