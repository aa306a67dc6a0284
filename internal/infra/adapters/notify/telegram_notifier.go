package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier pushes high-priority inbox arrivals to a Telegram chat so
// a rep away from the dashboard still hears about them. Proposals below the
// configured priority are dropped silently.
type TelegramNotifier struct {
	bot         *tgbotapi.BotAPI
	chatID      int64
	minPriority int
	log         zerolog.Logger
}

func NewTelegramNotifier(cfg *config.NotifyConfig, log zerolog.Logger) (*TelegramNotifier, error) {
	if cfg == nil || cfg.TelegramToken == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{
		bot:         bot,
		chatID:      cfg.ChatID,
		minPriority: cfg.MinPriority,
		log:         log.With().Str("component", "telegram-notifier").Logger(),
	}, nil
}

func (n *TelegramNotifier) NotifyProposal(ctx context.Context, p *model.Proposal) error {
	if p.Priority < n.minPriority {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("New proposal %s (priority %d)", p.ID, p.Priority)
	if p.ProspectID != "" {
		text += fmt.Sprintf("\nProspect: %s", p.ProspectID)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Str("proposal_id", p.ID).Msg("telegram send failed")
		return err
	}
	return nil
}
