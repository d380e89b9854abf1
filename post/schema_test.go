package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustField(t *testing.T, name string) *FieldSpec {
	t.Helper()
	f, ok := FieldByName(name)
	require.True(t, ok, "schema field %s", name)
	return f
}

func TestSchemaOrder(t *testing.T) {
	want := []string{
		FieldTitle, FieldLabels, FieldPoster, FieldRating,
		FieldReview, FieldScenes, FieldYoutube, FieldSource,
	}
	require.Len(t, Fields, len(want))
	for i, name := range want {
		assert.Equal(t, name, Fields[i].Name)
	}
}

func TestValidateTitle(t *testing.T) {
	f := mustField(t, FieldTitle)

	v, verr := f.Validate("  Inception  ")
	require.Nil(t, verr)
	assert.Equal(t, "Inception", v.Text)

	_, verr = f.Validate("   ")
	require.NotNil(t, verr)
	assert.Equal(t, FieldTitle, verr.Field)
	assert.NotEmpty(t, verr.Reason)
}

func TestValidateLabels(t *testing.T) {
	f := mustField(t, FieldLabels)

	v, verr := f.Validate("scifi, thriller,, ")
	require.Nil(t, verr)
	assert.Equal(t, []string{"scifi", "thriller"}, v.List)
	assert.Equal(t, "scifi, thriller", v.Text)

	_, verr = f.Validate(" , ,")
	require.NotNil(t, verr)
}

func TestValidateRating(t *testing.T) {
	f := mustField(t, FieldRating)

	for _, ok := range []string{"0", "8.5", "10"} {
		v, verr := f.Validate(ok)
		require.Nil(t, verr, "rating %q", ok)
		assert.Equal(t, ok, v.Text)
	}
	for _, bad := range []string{"abc", "", "-1", "10.5"} {
		_, verr := f.Validate(bad)
		require.NotNil(t, verr, "rating %q", bad)
	}
}

func TestValidateScenes(t *testing.T) {
	f := mustField(t, FieldScenes)

	v, verr := f.Validate("1, 2,3")
	require.Nil(t, verr)
	assert.Equal(t, []string{"1", "2", "3"}, v.List)

	v, verr = f.Validate("4\n5\n6")
	require.Nil(t, verr)
	assert.Equal(t, []string{"4", "5", "6"}, v.List)

	for _, skip := range []string{"skip", "-", "none", "SKIP"} {
		v, verr = f.Validate(skip)
		require.Nil(t, verr, "scenes %q", skip)
		assert.Empty(t, v.List)
	}

	for _, bad := range []string{"1,two", "0", "-3", "1.5"} {
		_, verr = f.Validate(bad)
		require.NotNil(t, verr, "scenes %q", bad)
	}
}

func TestValidateYoutube(t *testing.T) {
	f := mustField(t, FieldYoutube)

	v, verr := f.Validate("https://www.youtube.com/watch?v=abc123&t=10")
	require.Nil(t, verr)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", v.Text)

	v, verr = f.Validate("https://youtu.be/xyz?t=5")
	require.Nil(t, verr)
	assert.Equal(t, "https://www.youtube.com/embed/xyz", v.Text)

	v, verr = f.Validate("https://www.youtube.com/embed/def")
	require.Nil(t, verr)
	assert.Equal(t, "https://www.youtube.com/embed/def", v.Text)

	v, verr = f.Validate("skip")
	require.Nil(t, verr)
	assert.Empty(t, v.Text)

	for _, bad := range []string{"https://vimeo.com/123", "not a url"} {
		_, verr = f.Validate(bad)
		require.NotNil(t, verr, "youtube %q", bad)
	}
}

func TestNextUnfilled(t *testing.T) {
	values := map[string]Value{}
	assert.Equal(t, FieldTitle, NextUnfilled(values).Name)

	values[FieldTitle] = Value{Text: "Inception"}
	assert.Equal(t, FieldLabels, NextUnfilled(values).Name)

	for i := range Fields {
		values[Fields[i].Name] = Value{Text: "x"}
	}
	assert.Nil(t, NextUnfilled(values))
}
