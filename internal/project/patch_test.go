package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/testutil"
)

const sampleDiff = "diff --git a/README b/README\n--- a/README\n+++ b/README\n@@ -1 +1 @@\n-old\n+new\n"

func TestPatches_OneRecordPerSubmission(t *testing.T) {
	w := newWorld(t)
	d, err := project.NewPatch(w.repo.ID, "fix-readme", "Fix typo", sampleDiff)
	require.NoError(t, err)
	v1 := testutil.Sign(t, w.author, d, 10)
	v2 := testutil.Sign(t, w.author, d, 20)

	patches, excluded := project.Patches(w.repo.ID, []event.Event{v2, v1, w.issue})

	require.Len(t, patches, 2)
	assert.Empty(t, excluded)
	assert.Equal(t, project.PatchRecord{
		ID:          v1.ID,
		Repository:  w.repo.ID,
		Author:      w.author.PublicKey(),
		CreatedAt:   10,
		Name:        "fix-readme",
		Description: "Fix typo",
		Diff:        sampleDiff,
	}, patches[0])
	assert.Equal(t, v2.ID, patches[1].ID)
}

func TestPatches_StructuralFailures(t *testing.T) {
	w := newWorld(t)
	unnamed := testutil.Sign(t, w.author, event.Draft{
		Kind:    event.KindPatch,
		Tags:    [][]string{{event.TagRef, w.repo.ID}},
		Content: `{"description":"d","patch":"p"}`,
	}, 10)
	garbled := testutil.Sign(t, w.author, event.Draft{
		Kind:    event.KindPatch,
		Tags:    [][]string{{event.TagRef, w.repo.ID}, {event.TagName, "x"}},
		Content: "not json",
	}, 11)
	elsewhere := testutil.Sign(t, w.author, event.Draft{
		Kind:    event.KindPatch,
		Tags:    [][]string{{event.TagRef, "other-repo"}},
		Content: "{}",
	}, 12)

	patches, excluded := project.Patches(w.repo.ID, []event.Event{unnamed, garbled, elsewhere})

	assert.Empty(t, patches)
	assert.ElementsMatch(t, []event.Exclusion{
		{EventID: unnamed.ID, Reason: "MISSING_NAME"},
		{EventID: garbled.ID, Reason: "MALFORMED_CONTENT"},
	}, excluded)
}

func TestNewPatch_RejectsBlank(t *testing.T) {
	_, err := project.NewPatch("repo", " ", "d", sampleDiff)
	assert.Equal(t, project.ErrCodeBlankField, project.StructuralCode(err))

	_, err = project.NewPatch("repo", "name", "d", "\n")
	assert.Equal(t, project.ErrCodeBlankField, project.StructuralCode(err))

	_, err = project.NewPatch("", "name", "d", sampleDiff)
	assert.Error(t, err)
}

func TestPatches_MultipleRepositoryRefs(t *testing.T) {
	w := newWorld(t)
	d, err := project.NewPatch(w.repo.ID, "fix-readme", "Fix typo", sampleDiff)
	require.NoError(t, err)
	d.Tags = append(d.Tags, []string{event.TagRef, "upstream-repo"})
	p := testutil.Sign(t, w.author, d, 10)

	patches, excluded := project.Patches(w.repo.ID, []event.Event{p})
	require.Len(t, patches, 1)
	assert.Empty(t, excluded)
	assert.Equal(t, w.repo.ID, patches[0].Repository)

	upstream, _ := project.Patches("upstream-repo", []event.Event{p})
	require.Len(t, upstream, 1)
	assert.Equal(t, "upstream-repo", upstream[0].Repository)
}
