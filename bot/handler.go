package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"blogger_movie_post_bot/post"
	"blogger_movie_post_bot/publisher"
	"blogger_movie_post_bot/server"
)

const (
	cbConfirm    = "post_confirm"
	cbCancel     = "post_cancel"
	cbEdit       = "post_edit"
	cbEditPrefix = "edit_"

	publishTimeout = 60 * time.Second
	authWait       = 30 * time.Second
)

const welcomeText = `Welcome to the Blogger Movie Post Bot!

I help you create and publish movie review posts to your Blogger blog.

/post - start creating a new movie post
/cancel - cancel the current operation
/edit - edit a field before publishing
/status - show collection progress
/template - show the template placeholders
/help - full command list

Use /post to get started.`

const helpText = `Blogger Movie Post Bot

Commands:
/start - welcome message
/post - start creating a new movie post
/cancel - cancel the current post
/edit <field> - edit one field before publishing
/status - show which fields are collected
/template - show the template placeholder set
/suggest - draft the review with the configured model
/accept - use the last suggested draft
/auth - check or begin Blogger authorization
/complete_auth - finish authorization after the browser step
/help - this message

Flow: /post walks you through title, labels, poster, rating, review,
scenes, YouTube link, and source data. Every field is validated; after
the last one you review a summary and confirm with the POST button.
You can /cancel at any time without publishing anything.`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.send(chatID, welcomeText)
		case "help":
			b.send(chatID, helpText)
		case "post":
			b.cmdPost(chatID, userID)
		case "cancel":
			b.cmdCancel(chatID, userID)
		case "edit":
			b.cmdEdit(chatID, userID, strings.TrimSpace(msg.CommandArguments()))
		case "status":
			b.cmdStatus(chatID, userID)
		case "template":
			b.send(chatID, templateInfo())
		case "suggest":
			b.cmdSuggest(ctx, chatID, userID)
		case "accept":
			b.cmdAccept(chatID, userID)
		case "auth":
			b.cmdAuth(chatID)
		case "complete_auth":
			b.cmdCompleteAuth(ctx, chatID)
		default:
			b.send(chatID, "Unknown command. Use /help to see what I can do.")
		}
		return
	}

	b.handleText(chatID, userID, strings.TrimSpace(msg.Text))
}

// handleText routes a plain message into the session state machine.
func (b *Bot) handleText(chatID, userID int64, text string) {
	sess, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "Please use /post to start creating a new movie post.")
		return
	}

	res, err := sess.Input(text)
	if err != nil {
		if errors.Is(err, post.ErrNotCollecting) {
			b.send(chatID, "I'm not expecting input right now. Use the buttons, or /post to start over.")
			return
		}
		b.send(chatID, "Something went wrong: "+err.Error())
		return
	}
	if res.Err != nil {
		b.send(chatID, "❌ "+res.Err.Reason)
		return
	}
	if res.Complete {
		b.showConfirmation(chatID, sess)
		return
	}
	b.send(chatID, stepPrompt(sess))
}

func (b *Bot) cmdPost(chatID, userID int64) {
	sess := post.NewSession(userID)
	sess.Start()
	b.store.Set(userID, sess)
	b.infof("user %d started a post", userID)
	b.send(chatID, stepPrompt(sess))
}

func (b *Bot) cmdCancel(chatID, userID int64) {
	if sess, ok := b.store.Get(userID); ok {
		sess.Cancel()
		b.store.Delete(userID)
		b.send(chatID, "❌ Post creation cancelled.")
		return
	}
	b.send(chatID, "No active post creation to cancel.")
}

func (b *Bot) cmdEdit(chatID, userID int64, field string) {
	sess, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "No active post to edit. Use /post to start creating one.")
		return
	}
	if field == "" {
		if sess.State != post.StateReadyToPublish {
			b.send(chatID, "Editing is available once all fields are collected.")
			return
		}
		b.sendWithKeyboard(chatID, "Which field would you like to edit?", editKeyboard())
		return
	}
	b.startFieldEdit(chatID, sess, field)
}

func (b *Bot) startFieldEdit(chatID int64, sess *post.Session, field string) {
	spec, err := sess.BeginEdit(field)
	if err != nil {
		if errors.Is(err, post.ErrNotReady) {
			b.send(chatID, "Editing is available once all fields are collected.")
			return
		}
		b.send(chatID, fmt.Sprintf("Unknown field %q. Fields: %s.", field, fieldNames()))
		return
	}
	current := "not set"
	if v, ok := sess.Values[spec.Name]; ok && v.Text != "" {
		current = v.Text
	}
	b.send(chatID, fmt.Sprintf("Current value: %s\n\n%s", current, spec.Prompt))
}

func (b *Bot) cmdStatus(chatID, userID int64) {
	sess, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "No active post creation in progress.\nUse /post to start creating a new movie post.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Current post status:\n\n")
	filled := 0
	cur := sess.Current()
	for i := range post.Fields {
		name := &post.Fields[i]
		display := titleCase(name.Name)
		switch {
		case cur != nil && cur.Name == name.Name:
			fmt.Fprintf(&sb, "➡️ %s: currently asking\n", display)
		default:
			if v, ok := sess.Values[name.Name]; ok {
				filled++
				fmt.Fprintf(&sb, "✅ %s: %s\n", display, displayValue(name.Name, v))
			} else {
				fmt.Fprintf(&sb, "⏳ %s: pending\n", display)
			}
		}
	}
	fmt.Fprintf(&sb, "\nProgress: %d/%d fields collected (state: %s)", filled, len(post.Fields), sess.State)
	b.send(chatID, sb.String())
}

func (b *Bot) cmdSuggest(ctx context.Context, chatID, userID int64) {
	if b.agent == nil {
		b.send(chatID, "No review assistant is configured.")
		return
	}
	sess, ok := b.store.Get(userID)
	if !ok {
		b.send(chatID, "Use /post first; /suggest drafts the review step.")
		return
	}
	cur := sess.Current()
	if cur == nil || cur.Name != post.FieldReview {
		b.send(chatID, "/suggest works while I'm asking for the review.")
		return
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	draft, err := b.agent.SuggestReview(cctx,
		sess.Values[post.FieldTitle].Text,
		sess.Values[post.FieldLabels].List,
		sess.Values[post.FieldRating].Text)
	if err != nil {
		b.send(chatID, "Could not draft a review: "+err.Error())
		return
	}
	sess.Draft = draft
	b.send(chatID, draft+"\n\nSend /accept to use this draft, or type your own review.")
}

func (b *Bot) cmdAccept(chatID, userID int64) {
	sess, ok := b.store.Get(userID)
	if !ok || sess.Draft == "" {
		b.send(chatID, "There is no suggested draft to accept. Use /suggest first.")
		return
	}
	res, err := sess.AcceptDraft()
	if err != nil {
		b.send(chatID, "Could not accept the draft: "+err.Error())
		return
	}
	if res.Err != nil {
		b.send(chatID, "❌ "+res.Err.Reason)
		return
	}
	if res.Complete {
		b.showConfirmation(chatID, sess)
		return
	}
	b.send(chatID, "✅ Review saved.\n\n"+stepPrompt(sess))
}

func (b *Bot) cmdAuth(chatID int64) {
	if b.pub.Authorized() {
		b.send(chatID, "✅ Authorization is active. You can publish posts with /post.")
		return
	}

	b.authMu.Lock()
	defer b.authMu.Unlock()
	if b.auth != nil {
		b.auth.Stop()
	}
	srv := server.New(b.authListen)
	if err := srv.Start(); err != nil {
		b.send(chatID, "Could not start the authorization helper: "+err.Error())
		return
	}
	b.auth = srv

	url := b.pub.AuthURL(srv.RedirectURI())
	b.send(chatID, fmt.Sprintf(
		"Authorization required.\n\n"+
			"1. Open this URL: %s\n"+
			"2. Sign in with your Google account and grant Blogger access\n"+
			"3. Return here and send /complete_auth\n\n"+
			"This is a one-time setup.", url))
}

func (b *Bot) cmdCompleteAuth(ctx context.Context, chatID int64) {
	b.authMu.Lock()
	srv := b.auth
	b.authMu.Unlock()
	if srv == nil {
		b.send(chatID, "Start with /auth first.")
		return
	}

	b.send(chatID, "Checking authorization...")
	code, err := srv.Wait(authWait)
	if err != nil {
		b.send(chatID, "❌ "+err.Error())
		return
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := b.pub.ExchangeCode(cctx, code, srv.RedirectURI()); err != nil {
		b.send(chatID, "❌ Authorization failed: "+err.Error())
		return
	}
	srv.Stop()
	b.authMu.Lock()
	b.auth = nil
	b.authMu.Unlock()
	b.send(chatID, "✅ Authorization successful. You can now publish posts with /post.")
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Printf("answer callback failed: %v", err)
	}
	if q.Message == nil || q.From == nil {
		return
	}
	userID := q.From.ID
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID

	sess, ok := b.store.Get(userID)
	if !ok {
		b.edit(chatID, messageID, "Session expired. Please use /post to start again.")
		return
	}

	switch {
	case q.Data == cbConfirm:
		b.publish(ctx, chatID, messageID, userID, sess)
	case q.Data == cbCancel:
		sess.Cancel()
		b.store.Delete(userID)
		b.edit(chatID, messageID, "❌ Post creation cancelled.")
	case q.Data == cbEdit:
		msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, "Which field would you like to edit?", editKeyboard())
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Printf("edit failed: %v", err)
		}
	case strings.HasPrefix(q.Data, cbEditPrefix):
		field := strings.TrimPrefix(q.Data, cbEditPrefix)
		b.startFieldEdit(chatID, sess, field)
	}
}

// publish renders the template and hands the document to the Blogger gateway.
// Failure of any stage keeps the session at ReadyToPublish with its values.
func (b *Bot) publish(ctx context.Context, chatID int64, messageID int, userID int64, sess *post.Session) {
	if err := sess.BeginPublish(); err != nil {
		b.edit(chatID, messageID, "The post is not ready to publish yet.")
		return
	}
	b.edit(chatID, messageID, "📤 Publishing post to Blogger...")

	vals, err := post.Compose(sess.Values)
	if err != nil {
		sess.FinishPublish(false)
		b.send(chatID, "❌ Could not assemble the post: "+err.Error()+"\nYour data is kept; fix with /edit and confirm again.")
		return
	}
	html, err := b.tmpl.Render(vals)
	if err != nil {
		sess.FinishPublish(false)
		b.send(chatID, "❌ Template error: "+err.Error()+"\nYour data is kept; fix with /edit and confirm again.")
		return
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	url, err := b.pub.CreatePost(cctx, publisher.PostParams{
		Title:   vals.Title,
		Content: html,
		Labels:  sess.Values[post.FieldLabels].List,
	})
	if err != nil {
		sess.FinishPublish(false)
		var pubErr *publisher.PublishError
		if errors.As(err, &pubErr) {
			b.send(chatID, fmt.Sprintf("❌ Blogger rejected the post (%d): %s\nYour data is kept; retry from the summary or /edit a field.", pubErr.StatusCode, pubErr.Message))
		} else {
			b.send(chatID, "❌ Failed to publish: "+err.Error()+"\nYour data is kept; retry from the summary or /edit a field.")
		}
		b.showConfirmation(chatID, sess)
		return
	}

	sess.FinishPublish(true)
	b.store.Delete(userID)
	b.infof("user %d published %s", userID, url)
	b.send(chatID, "✅ Post published successfully!\n\n🔗 "+url)
}

// showConfirmation prints the collected data summary with the final buttons.
func (b *Bot) showConfirmation(chatID int64, sess *post.Session) {
	var sb strings.Builder
	sb.WriteString("📋 Post summary:\n\n")
	for i := range post.Fields {
		f := &post.Fields[i]
		v := sess.Values[f.Name]
		fmt.Fprintf(&sb, "%s: %s\n", titleCase(f.Name), displayValue(f.Name, v))
	}
	sb.WriteString("\nWhat would you like to do?")

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cbEdit)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbCancel)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ POST", cbConfirm)),
	)
	b.sendWithKeyboard(chatID, sb.String(), kb)
}

func editKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range post.Fields {
		name := post.Fields[i].Name
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(titleCase(name), cbEditPrefix+name),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func stepPrompt(sess *post.Session) string {
	cur := sess.Current()
	if cur == nil {
		return "All fields are collected."
	}
	return fmt.Sprintf("📝 Step %d/%d: %s", sess.Step+1, len(post.Fields), cur.Prompt)
}

func displayValue(field string, v post.Value) string {
	s := v.Text
	if field == post.FieldScenes && len(v.List) == 0 {
		s = "no gallery"
	}
	if field == post.FieldYoutube && s == "" {
		s = "skipped"
	}
	if s == "" {
		s = "not set"
	}
	if field == post.FieldReview && len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fieldNames() string {
	names := make([]string, len(post.Fields))
	for i := range post.Fields {
		names[i] = post.Fields[i].Name
	}
	return strings.Join(names, ", ")
}

func templateInfo() string {
	return `HTML template structure:

Scalar placeholders:
- (1#Title) - movie title
- (2#Labels) - labels, comma-joined
- (3#Poster) - poster image name
- (4#Rating) - movie rating
- (5#MovieReview) - review text (Markdown converted to HTML)
- (8#Year/Month/MovieCode) - source data

Blocks:
- <!--scenes:begin--> ... <!--scenes:end--> repeats once per scene,
  with (6#SceneNumber) substituted; no scenes means no gallery markup.
- <!--youtube:begin--> ... <!--youtube:end--> appears only when a
  trailer link was given, with (7#YoutubeEmbedLink) substituted.

Unknown or missing placeholders fail the publish instead of leaking
raw tokens into the blog.`
}
