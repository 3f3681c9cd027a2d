package event_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/testutil"
)

const alicePubKey = "04918dfc36c93e7db6cc0d60f37e1522f1c36b64d3f4b424c532d7c595febbc5"

// Published events signed by an independent implementation.
func knownIssue() event.Event {
	return event.Event{
		ID:        "916fd1e7d9d2b3c81181663d1a08c1d79b6e6f74bbbbdf166c6234b2d48f6514",
		PubKey:    alicePubKey,
		CreatedAt: 1673388055,
		Kind:      event.KindIssue,
		Tags: [][]string{
			{"e", "105d7de823e4394c08445d14904d379319c65ed341103ff0e4d95f86252cd83d"},
			{"n", "First issue"},
		},
		Content: "hello",
		Sig:     "9a80e48a40a63ba474b4698b2902c1d942a2b62b76ab8b4e7fb4620fe5c4321c3be38cfe67b69052c1ca8a97f216e223b50124f677f7d5120034c225a3948247",
	}
}

func knownRepository() event.Event {
	return event.Event{
		ID:        "1439f6c41f050365048726478f350c5ebe5ee4219d53ef788273257693c0db25",
		PubKey:    alicePubKey,
		CreatedAt: 1673389764,
		Kind:      event.KindRepository,
		Tags: [][]string{
			{"r", "https://github.com/nostr-protocol/nips"},
			{"n", "nips"},
		},
		Content: "",
		Sig:     "54af604bc8bc88449ad52facf65ae59b839497f7f17b9da71c356e1d897688e76562bc8424313039881850c99209972aca9d7c2470632aaac22a9090a8c0f256",
	}
}

func TestValidate_KnownEvents(t *testing.T) {
	for _, ev := range []event.Event{knownIssue(), knownRepository()} {
		t.Run(ev.Kind.String(), func(t *testing.T) {
			assert.Equal(t, ev.ID, ev.CanonicalID())
			assert.NoError(t, event.Validate(ev))
		})
	}
}

func TestSerialize_CanonicalLayout(t *testing.T) {
	ev := knownRepository()
	want := `[0,"04918dfc36c93e7db6cc0d60f37e1522f1c36b64d3f4b424c532d7c595febbc5",1673389764,124,[["r","https://github.com/nostr-protocol/nips"],["n","nips"]],""]`
	assert.Equal(t, want, string(ev.Serialize()))
}

func TestValidate_TamperedContent(t *testing.T) {
	ev := knownIssue()
	ev.Content = "hello!"

	err := event.Validate(ev)
	require.Error(t, err)
	assert.True(t, event.IsValidationError(err))
	assert.Equal(t, event.ErrCodeTamperedID, event.ValidationCode(err))
}

func TestValidate_TamperedTags(t *testing.T) {
	ev := knownIssue()
	ev.Tags[1][1] = "Second issue"

	assert.Equal(t, event.ErrCodeTamperedID, event.ValidationCode(event.Validate(ev)))
}

func TestValidate_RecomputedIDWithOldSignature(t *testing.T) {
	ev := knownIssue()
	ev.Content = "goodbye"
	ev.ID = ev.CanonicalID()

	assert.Equal(t, event.ErrCodeBadSignature, event.ValidationCode(event.Validate(ev)))
}

func TestValidate_WrongAuthor(t *testing.T) {
	mallory := testutil.Signer(t, 9)
	ev := knownIssue()
	ev.PubKey = mallory.PublicKey()
	ev.ID = ev.CanonicalID()

	assert.Equal(t, event.ErrCodeBadSignature, event.ValidationCode(event.Validate(ev)))
}

func TestValidate_MalformedSignature(t *testing.T) {
	ev := knownIssue()
	ev.Sig = "not-hex"

	err := event.Validate(ev)
	assert.Equal(t, event.ErrCodeBadSignature, event.ValidationCode(err))
	var ve *event.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ev.ID, ve.EventID)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestValidate_FreshlySigned(t *testing.T) {
	s := testutil.Signer(t, 1)
	ev := testutil.Sign(t, s, event.Draft{
		Kind:    event.KindIssueComment,
		Tags:    [][]string{{"e", knownIssue().ID}},
		Content: "Ünïcödé \"quoted\"\n\ttabbed",
	}, 1700000000)

	assert.Equal(t, s.PublicKey(), ev.PubKey)
	assert.NoError(t, event.Validate(ev))
}

type rejectAll struct{}

func (rejectAll) Verify(string, string, string) error { return errors.New("nope") }

func TestValidator_CustomVerifier(t *testing.T) {
	v := event.NewValidator(rejectAll{})

	assert.Equal(t, event.ErrCodeBadSignature, event.ValidationCode(v.Validate(knownIssue())))

	tampered := knownIssue()
	tampered.Content = "x"
	assert.Equal(t, event.ErrCodeTamperedID, event.ValidationCode(v.Validate(tampered)),
		"id check runs before signature check")
}
