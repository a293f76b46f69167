package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/annabbc1804/vitamin-bot/internal/reminder"
)

// Sender is the part of *tgbotapi.BotAPI the package uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers reminder messages over Telegram.
type Notifier struct {
	bot Sender
}

// NewNotifier wraps a bot as a reminder.Notifier.
func NewNotifier(bot Sender) *Notifier {
	return &Notifier{bot: bot}
}

// Notify sends text to chatID, attaching the yes/no keyboard when requested.
func (n *Notifier) Notify(chatID int64, text string, opts reminder.ReplyOptions) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if opts.YesNo {
		msg.ReplyMarkup = yesNoKeyboard()
	}
	_, err := n.bot.Send(msg)
	return err
}
