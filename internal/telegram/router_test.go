package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annabbc1804/vitamin-bot/internal/reminder"
)

type fakeSender struct {
	fail bool
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.fail {
		return tgbotapi.Message{}, errors.New("network down")
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

type fakeCommands struct {
	calls []string
	name  string
	text  string
}

func (f *fakeCommands) Start(_ context.Context, _ int64, firstName string) string {
	f.calls = append(f.calls, "start")
	f.name = firstName
	return "hello"
}

func (f *fakeCommands) Status(context.Context, int64) string {
	f.calls = append(f.calls, "status")
	return "status"
}

func (f *fakeCommands) Reset(context.Context, int64) string {
	f.calls = append(f.calls, "reset")
	return "reset"
}

func (f *fakeCommands) ScheduleInfo() string {
	f.calls = append(f.calls, "schedule")
	return "schedule"
}

func (f *fakeCommands) HandleText(_ context.Context, _ int64, text string) string {
	f.calls = append(f.calls, "text")
	f.text = text
	return "ok"
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Anna"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func TestRouter_Dispatch(t *testing.T) {
	bot := &fakeSender{}
	cmds := &fakeCommands{}
	r := NewRouter(bot, zaptest.NewLogger(t), cmds)
	ctx := context.Background()

	for _, text := range []string{"/start", "/status", "/reset now", "/schedule@vitamin_bot", "/unknown", "", " Yes "} {
		r.HandleUpdate(ctx, textUpdate(5, text))
	}

	assert.Equal(t, []string{"start", "status", "reset", "schedule", "text"}, cmds.calls)
	assert.Equal(t, "Anna", cmds.name)
	assert.Equal(t, "Yes", cmds.text)

	require.Len(t, bot.sent, 5)
	assert.Equal(t, int64(5), bot.sent[0].ChatID)
	assert.Equal(t, "hello", bot.sent[0].Text)
	assert.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, bot.sent[0].ReplyMarkup)
}

func TestRouter_IgnoresNonMessages(t *testing.T) {
	bot := &fakeSender{}
	cmds := &fakeCommands{}
	r := NewRouter(bot, zaptest.NewLogger(t), cmds)

	r.HandleUpdate(context.Background(), tgbotapi.Update{})
	assert.Empty(t, cmds.calls)
	assert.Empty(t, bot.sent)
}

func TestNotifier_YesNoKeyboard(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(bot)

	require.NoError(t, n.Notify(9, "take them", reminder.ReplyOptions{YesNo: true}))
	require.NoError(t, n.Notify(9, "well done", reminder.ReplyOptions{}))
	require.Len(t, bot.sent, 2)

	kb, ok := bot.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.OneTimeKeyboard)
	require.Len(t, kb.Keyboard, 1)
	assert.Equal(t, buttonYes, kb.Keyboard[0][0].Text)
	assert.Equal(t, buttonNo, kb.Keyboard[0][1].Text)
	assert.Nil(t, bot.sent[1].ReplyMarkup)

	bot.fail = true
	assert.Error(t, n.Notify(9, "x", reminder.ReplyOptions{}))
}

func TestNotifier_ButtonsParseAsAnswers(t *testing.T) {
	assert.Equal(t, reminder.AnswerYes, reminder.ParseAnswer(buttonYes))
	assert.Equal(t, reminder.AnswerNo, reminder.ParseAnswer(buttonNo))
}
