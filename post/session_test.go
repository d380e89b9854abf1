package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var happyInputs = []string{
	"Inception",
	"scifi,thriller",
	"inception01",
	"9",
	"Great film",
	"1,2,3",
	"https://youtu.be/abc",
	"2024/03/INC01",
}

func collectAll(t *testing.T, sess *Session) {
	t.Helper()
	for i, in := range happyInputs {
		res, err := sess.Input(in)
		require.NoError(t, err, "input %d", i)
		require.Nil(t, res.Err, "input %d", i)
		if i < len(happyInputs)-1 {
			require.NotNil(t, res.Next)
			assert.Equal(t, Fields[i+1].Name, res.Next.Name)
		} else {
			assert.True(t, res.Complete)
		}
	}
}

func TestCollectingReachesReadyToPublish(t *testing.T) {
	sess := NewSession(42)
	first := sess.Start()
	assert.Equal(t, FieldTitle, first.Name)
	assert.Equal(t, StateCollecting, sess.State)

	collectAll(t, sess)

	assert.Equal(t, StateReadyToPublish, sess.State)
	assert.True(t, sess.Complete())
	assert.Equal(t, "Inception", sess.Values[FieldTitle].Text)
	assert.Equal(t, []string{"scifi", "thriller"}, sess.Values[FieldLabels].List)
	assert.Equal(t, "9", sess.Values[FieldRating].Text)
	assert.Equal(t, []string{"1", "2", "3"}, sess.Values[FieldScenes].List)
	assert.Equal(t, "https://www.youtube.com/embed/abc", sess.Values[FieldYoutube].Text)
}

func TestInvalidInputKeepsStepAndValues(t *testing.T) {
	sess := NewSession(42)
	sess.Start()

	for _, in := range happyInputs[:3] {
		res, err := sess.Input(in)
		require.NoError(t, err)
		require.Nil(t, res.Err)
	}
	step := sess.Step
	require.Equal(t, FieldRating, sess.Current().Name)

	res, err := sess.Input("abc")
	require.NoError(t, err)
	require.NotNil(t, res.Err)
	assert.Equal(t, FieldRating, res.Err.Field)

	assert.Equal(t, step, sess.Step, "step unchanged on invalid input")
	assert.Equal(t, StateCollecting, sess.State)
	_, stored := sess.Values[FieldRating]
	assert.False(t, stored, "no value stored for the rejected field")
	assert.Equal(t, "Inception", sess.Values[FieldTitle].Text, "prior fields untouched")
}

func TestInputOutsideCollectingErrs(t *testing.T) {
	sess := NewSession(42)
	_, err := sess.Input("hello")
	assert.ErrorIs(t, err, ErrNotCollecting)
}

func TestCancelDiscardsValues(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	_, err := sess.Input("Inception")
	require.NoError(t, err)

	sess.Cancel()
	assert.Equal(t, StateCancelled, sess.State)

	// /post after cancel starts clean.
	sess.Start()
	assert.Empty(t, sess.Values)
	assert.Equal(t, 0, sess.Step)
}

func TestEditFromReadyToPublish(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	collectAll(t, sess)

	spec, err := sess.BeginEdit(FieldRating)
	require.NoError(t, err)
	assert.Equal(t, FieldRating, spec.Name)
	assert.Equal(t, StateEditing, sess.State)

	res, err := sess.Input("7.5")
	require.NoError(t, err)
	require.Nil(t, res.Err)
	assert.True(t, res.Complete)
	assert.Equal(t, StateReadyToPublish, sess.State)
	assert.Equal(t, "7.5", sess.Values[FieldRating].Text)
}

func TestEditRejectsInvalidAndStaysEditing(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	collectAll(t, sess)

	_, err := sess.BeginEdit(FieldRating)
	require.NoError(t, err)

	res, err := sess.Input("eleven")
	require.NoError(t, err)
	require.NotNil(t, res.Err)
	assert.Equal(t, StateEditing, sess.State)
	assert.Equal(t, "9", sess.Values[FieldRating].Text, "old value kept")
}

func TestBeginEditRequiresReady(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	_, err := sess.BeginEdit(FieldTitle)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestBeginEditUnknownField(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	collectAll(t, sess)
	_, err := sess.BeginEdit("director")
	assert.Error(t, err)
}

func TestPublishFailureRetainsSession(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	collectAll(t, sess)
	before := map[string]Value{}
	for k, v := range sess.Values {
		before[k] = v
	}

	require.NoError(t, sess.BeginPublish())
	assert.Equal(t, StatePublishing, sess.State)

	sess.FinishPublish(false)
	assert.Equal(t, StateReadyToPublish, sess.State)
	assert.Equal(t, before, sess.Values, "values intact after failed publish")

	// A retry with the same values succeeds.
	require.NoError(t, sess.BeginPublish())
	sess.FinishPublish(true)
	assert.Equal(t, before, sess.Values)
}

func TestBeginPublishRequiresReady(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	assert.ErrorIs(t, sess.BeginPublish(), ErrNotReady)
}

func TestAcceptDraft(t *testing.T) {
	sess := NewSession(42)
	sess.Start()
	for _, in := range happyInputs[:4] {
		res, err := sess.Input(in)
		require.NoError(t, err)
		require.Nil(t, res.Err)
	}
	require.Equal(t, FieldReview, sess.Current().Name)

	_, err := sess.AcceptDraft()
	assert.Error(t, err, "nothing to accept yet")

	sess.Draft = "A tight, clever heist picture."
	res, err := sess.AcceptDraft()
	require.NoError(t, err)
	require.Nil(t, res.Err)
	assert.Equal(t, "A tight, clever heist picture.", sess.Values[FieldReview].Text)
	assert.Empty(t, sess.Draft)
	assert.Equal(t, FieldScenes, res.Next.Name)
}

func TestStore(t *testing.T) {
	store := NewStore()
	_, ok := store.Get(1)
	assert.False(t, ok)

	sess := NewSession(1)
	store.Set(1, sess)
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Same(t, sess, got)

	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}
