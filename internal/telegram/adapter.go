// Package telegram answers questions about photos and text in Telegram
// chats through the multimodal agent.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/pkg/llm"
	"github.com/user/llmbench/pkg/logger"
)

const (
	maxTelegramMessage = 4096
	defaultPhotoPrompt = "Describe this image in detail."
)

const helpText = `Send me a photo with a caption and I'll answer the caption as a question about the image.
A photo without a caption gets a general description.
Plain text messages are answered without an image.

Commands:
/start - welcome message
/help - this help
/info - models in use`

// botAPI is the part of tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Answerer is the agent behavior the bot needs.
type Answerer interface {
	Answer(ctx context.Context, question string, img *llm.Image, useVision bool) (*agent.Answer, error)
	ModelInfo() agent.Info
}

// Adapter bridges Telegram to the agent.
type Adapter struct {
	bot    botAPI
	agent  Answerer
	limits agent.Limits
	client *http.Client
	log    *logger.Logger
}

// New creates a Telegram adapter.
func New(token string, a Answerer, limits agent.Limits, log *logger.Logger) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return newAdapter(bot, a, limits, log), nil
}

func newAdapter(bot botAPI, a Answerer, limits agent.Limits, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{
		bot:    bot,
		agent:  a,
		limits: limits,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.WithComponent("telegram"),
	}
}

// Start begins long-polling for Telegram updates and blocks until ctx is
// canceled.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			if update.Message.Text == "" && len(update.Message.Photo) == 0 {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(msg)
		return
	}

	chatID := msg.Chat.ID
	a.typing(chatID)

	if len(msg.Photo) > 0 {
		a.handlePhoto(ctx, msg)
		return
	}

	ans, err := a.agent.Answer(ctx, msg.Text, nil, false)
	if err != nil {
		a.log.Errorw("text answer failed", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
		return
	}
	a.sendResponse(chatID, ans.Text)
}

func (a *Adapter) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	question := strings.TrimSpace(msg.Caption)
	if question == "" {
		question = defaultPhotoPrompt
	}

	// Photo sizes are sorted smallest first.
	largest := msg.Photo[len(msg.Photo)-1]
	url, err := a.bot.GetFileDirectURL(largest.FileID)
	if err != nil {
		a.log.Errorw("resolve photo URL failed", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I couldn't download that photo.")
		return
	}
	img, _, err := agent.FetchImage(ctx, a.client, url, a.limits)
	if err != nil {
		a.log.Warnw("photo rejected", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I couldn't use that photo: "+err.Error())
		return
	}

	ans, err := a.agent.Answer(ctx, question, img, true)
	if err != nil {
		a.log.Errorw("photo answer failed", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your photo.")
		return
	}
	text := ans.Text
	if ans.FellBack {
		text = "(Image analysis was unavailable, so this answer is general.)\n\n" + text
	}
	a.sendResponse(chatID, text)
}

func (a *Adapter) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! I'm a multimodal QA bot. Send me a photo with a question, or just ask something.")

	case "help":
		a.sendResponse(chatID, helpText)

	case "info":
		info := a.agent.ModelInfo()
		a.sendResponse(chatID, fmt.Sprintf("Provider: %s\nVision model: %s\nText model: %s\nTemperature: %g\nMax tokens: %d",
			info.Provider, info.VisionModel, info.TextModel, info.Temperature, info.MaxTokens))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /help, /info")
	}
}

func (a *Adapter) typing(chatID int64) {
	if _, err := a.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		a.log.Debugw("send chat action failed", "error", err)
	}
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := a.bot.Send(msg); err != nil {
			// Model output is often not valid Telegram markdown.
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				a.log.Errorw("send message failed", "chat_id", chatID, "error", err)
			}
		}
	}
}

// splitMessage cuts text into Telegram-sized parts, preferring newline
// boundaries and never splitting a UTF-8 sequence.
func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > maxTelegramMessage {
		end := maxTelegramMessage
		if i := strings.LastIndexByte(text[:end], '\n'); i > maxTelegramMessage/2 {
			end = i + 1
		}
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
