package notifier

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CommandHandler answers one chat command. An empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// pollTimeout is the server-side long-poll wait in seconds.
const pollTimeout = 25

// StartPolling long-polls getUpdates and dispatches commands from the
// configured chat to handler until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for ctx.Err() == nil {
		var updates []update
		err := t.call(ctx, "getUpdates", map[string]int{"offset": offset, "timeout": pollTimeout}, &updates)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn().Err(err).Msg("polling request failed")
			sleep(ctx, 5*time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			t.dispatch(ctx, u, handler)
		}
	}
	log.Info().Msg("telegram polling stopped")
}

func (t *TelegramNotifier) dispatch(ctx context.Context, u update, handler CommandHandler) {
	if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
		return
	}
	if chat := strconv.FormatInt(u.Message.Chat.ID, 10); chat != t.ChatID {
		log.Warn().Str("chat_id", chat).Msg("ignoring message from unknown chat")
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	log.Info().Str("command", text).Msg("received command")

	if reply := handler(ctx, text); reply != "" {
		if err := t.Send(ctx, reply); err != nil {
			log.Error().Err(err).Msg("send reply")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
