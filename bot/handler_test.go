package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogger_movie_post_bot/post"
)

func TestStepPrompt(t *testing.T) {
	sess := post.NewSession(1)
	sess.Start()
	assert.Equal(t, "📝 Step 1/8: "+post.Fields[0].Prompt, stepPrompt(sess))

	res, err := sess.Input("Inception")
	require.NoError(t, err)
	require.Nil(t, res.Err)
	assert.True(t, strings.HasPrefix(stepPrompt(sess), "📝 Step 2/8:"))
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "Inception", displayValue(post.FieldTitle, post.Value{Text: "Inception"}))
	assert.Equal(t, "no gallery", displayValue(post.FieldScenes, post.Value{}))
	assert.Equal(t, "skipped", displayValue(post.FieldYoutube, post.Value{}))

	long := strings.Repeat("x", 150)
	got := displayValue(post.FieldReview, post.Value{Text: long})
	assert.Len(t, got, 103)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestEditKeyboardCoversEveryField(t *testing.T) {
	kb := editKeyboard()
	require.Len(t, kb.InlineKeyboard, len(post.Fields))
	for i, row := range kb.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, cbEditPrefix+post.Fields[i].Name, *row[0].CallbackData)
	}
}

func TestTemplateInfoNamesEveryToken(t *testing.T) {
	info := templateInfo()
	for _, tok := range []string{
		"(1#Title)", "(2#Labels)", "(3#Poster)", "(4#Rating)",
		"(5#MovieReview)", "(6#SceneNumber)", "(7#YoutubeEmbedLink)",
		"(8#Year/Month/MovieCode)",
	} {
		assert.Contains(t, info, tok)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Title", titleCase("title"))
	assert.Equal(t, "", titleCase(""))
}
