package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Commands is the command surface the router dispatches to. reminder.Service implements it.
type Commands interface {
	Start(ctx context.Context, userID int64, firstName string) string
	Status(ctx context.Context, userID int64) string
	Reset(ctx context.Context, userID int64) string
	ScheduleInfo() string
	HandleText(ctx context.Context, userID int64, text string) string
}

// Router wires Telegram updates to the command surface.
type Router struct {
	bot  Sender
	log  *zap.Logger
	cmds Commands
}

// NewRouter creates a new Telegram router.
func NewRouter(bot Sender, log *zap.Logger, cmds Commands) *Router {
	return &Router{bot: bot, log: log, cmds: cmds}
}

// HandleUpdate routes a single update to the matching command.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := chatID
	firstName := ""
	if msg.From != nil {
		userID = msg.From.ID
		firstName = msg.From.FirstName
	}
	text := strings.TrimSpace(msg.Text)

	switch {
	case isCommand(text, "start"):
		reply := tgbotapi.NewMessage(chatID, r.cmds.Start(ctx, userID, firstName))
		reply.ReplyMarkup = mainMenuKeyboard()
		r.send(reply)
	case isCommand(text, "status"):
		r.sendText(chatID, r.cmds.Status(ctx, userID))
	case isCommand(text, "reset"):
		r.sendText(chatID, r.cmds.Reset(ctx, userID))
	case isCommand(text, "schedule"):
		r.sendText(chatID, r.cmds.ScheduleInfo())
	case strings.HasPrefix(text, "/"):
		// Unknown command: ignore silently
	case text == "":
		// Stickers, photos and the like carry no text
	default:
		r.sendText(chatID, r.cmds.HandleText(ctx, userID, text))
	}
}

// isCommand matches "/name", "/name args" and "/name@botname".
func isCommand(text, name string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := fields[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd == "/"+name
}

func (r *Router) sendText(chatID int64, text string) {
	r.send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) send(msg tgbotapi.MessageConfig) {
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("reply failed", zap.Error(err), zap.Int64("chatID", msg.ChatID))
	}
}
