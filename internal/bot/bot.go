// Package bot implements the Telegram front-end: it polls for updates, keeps
// a bounded conversation buffer per user, and relays free-text messages to
// the relay service.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"companion-bot/internal/models"
	"companion-bot/internal/session"
	"companion-bot/internal/telegram"
)

// modelsPerPage is the number of model buttons shown per picker page,
// laid out two per row.
const modelsPerPage = 16

const greeting = "👋 Hi! I'm your personal companion bot powered by the OpenRouter API. " +
	"You can talk to me about anything and I'll do my best to help.\n\n" +
	"Use /model to pick an AI model.\n\n" +
	"Use /clear to reset the conversation history."

// api is the part of the Telegram client the bot uses.
type api interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, markup telegram.InlineKeyboardMarkup) (int64, error)
	EditMessageText(chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	SendChatAction(chatID int64, action string) error
	AnswerCallbackQuery(callbackID string) error
}

// relay is the part of the relay client the bot uses.
type relay interface {
	Chat(ctx context.Context, messages []models.Message, model string) (models.ChatResponse, error)
	Models(ctx context.Context) ([]models.ModelInfo, error)
}

// Bot wires the Telegram API to the relay service.
type Bot struct {
	api          api
	relay        relay
	sessions     *session.Store
	defaultModel string
	pollTimeout  int

	mu         sync.Mutex
	selections map[int64]string // user ID -> chosen model
}

func New(tg api, rc relay, sessions *session.Store, defaultModel string, pollTimeout int) *Bot {
	return &Bot{
		api:          tg,
		relay:        rc,
		sessions:     sessions,
		defaultModel: defaultModel,
		pollTimeout:  pollTimeout,
		selections:   make(map[int64]string),
	}
}

// Run polls for updates until the context is cancelled. Each update is
// handled in its own goroutine so different users' requests can interleave;
// the session store is safe for that.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[bot] getUpdates failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}
	identity := strconv.FormatInt(userID, 10)

	// In groups commands arrive addressed as /command@BotName.
	command := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(command, "/") {
		if at := strings.Index(command, "@"); at >= 0 {
			command = command[:at]
		}
	}

	switch command {
	case "/start":
		b.sessions.Clear(identity)
		b.send(chatID, greeting)
	case "/clear":
		b.sessions.Clear(identity)
		b.send(chatID, "Conversation history cleared.")
	case "/model":
		b.sendModelPicker(ctx, chatID)
	default:
		b.chat(ctx, chatID, identity, userID, msg.Text)
	}
}

func (b *Bot) chat(ctx context.Context, chatID int64, identity string, userID int64, text string) {
	b.sessions.Append(identity, models.Message{Role: models.RoleUser, Content: text})

	if err := b.api.SendChatAction(chatID, "typing"); err != nil {
		log.Printf("[bot] sendChatAction failed: %v", err)
	}

	history := b.sessions.GetOrCreate(identity)
	resp, err := b.relay.Chat(ctx, history, b.modelFor(userID))
	if err != nil {
		// The user's message stays in the buffer; only the reply is lost.
		log.Printf("[bot] relay chat failed for user %d: %v", userID, err)
		b.send(chatID, "😭 Sorry, I couldn't reach the assistant right now. Please try again.")
		return
	}

	b.sessions.Append(identity, models.Message{Role: models.RoleAssistant, Content: resp.Response})

	reply := fmt.Sprintf("%s\n\n_Model: %s_", resp.Response, resp.Model)
	if err := b.api.SendMarkdown(chatID, reply); err != nil {
		// Model output may contain broken Markdown; retry without parse mode.
		log.Printf("[bot] markdown send failed, falling back to plain text: %v", err)
		b.send(chatID, fmt.Sprintf("%s\n\nModel: %s", resp.Response, resp.Model))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := b.api.AnswerCallbackQuery(cb.ID); err != nil {
		log.Printf("[bot] answerCallbackQuery failed: %v", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, "model:"):
		modelID := strings.TrimPrefix(cb.Data, "model:")
		b.mu.Lock()
		b.selections[cb.From.ID] = modelID
		b.mu.Unlock()
		if err := b.api.EditMessageText(chatID, cb.Message.MessageID, "Selected model: "+modelID, nil); err != nil {
			log.Printf("[bot] editMessageText failed: %v", err)
		}
	case strings.HasPrefix(cb.Data, "modelpage:"):
		page, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "modelpage:"))
		if err != nil {
			return
		}
		catalog, err := b.relay.Models(ctx)
		if err != nil || len(catalog) == 0 {
			log.Printf("[bot] fetching models for page flip failed: %v", err)
			return
		}
		markup := modelKeyboard(catalog, page)
		if err := b.api.EditMessageText(chatID, cb.Message.MessageID, "Choose a model:", &markup); err != nil {
			log.Printf("[bot] editMessageText failed: %v", err)
		}
	}
}

func (b *Bot) sendModelPicker(ctx context.Context, chatID int64) {
	catalog, err := b.relay.Models(ctx)
	if err != nil || len(catalog) == 0 {
		if err != nil {
			log.Printf("[bot] fetching models failed: %v", err)
		}
		b.send(chatID, "Could not fetch the model list. The default model stays in use.")
		return
	}
	if _, err := b.api.SendKeyboard(chatID, "Choose a model:", modelKeyboard(catalog, 0)); err != nil {
		log.Printf("[bot] sending model picker failed: %v", err)
	}
}

// modelFor returns the user's chosen model, or the configured default when
// they never picked one.
func (b *Bot) modelFor(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if model, ok := b.selections[userID]; ok {
		return model
	}
	return b.defaultModel
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.api.SendMessage(chatID, text); err != nil {
		log.Printf("[bot] sendMessage failed: %v", err)
	}
}

// modelKeyboard builds one page of the model picker: two buttons per row
// plus a navigation row when more pages exist.
func modelKeyboard(catalog []models.ModelInfo, page int) telegram.InlineKeyboardMarkup {
	lastPage := (len(catalog) - 1) / modelsPerPage
	if page < 0 {
		page = 0
	}
	if page > lastPage {
		page = lastPage
	}

	start := page * modelsPerPage
	end := start + modelsPerPage
	if end > len(catalog) {
		end = len(catalog)
	}

	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for _, m := range catalog[start:end] {
		label := m.Name
		if label == "" {
			label = m.ID
		}
		row = append(row, telegram.InlineKeyboardButton{
			Text:         label,
			CallbackData: "model:" + m.ID,
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []telegram.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, telegram.InlineKeyboardButton{
			Text:         "«",
			CallbackData: "modelpage:" + strconv.Itoa(page-1),
		})
	}
	if end < len(catalog) {
		nav = append(nav, telegram.InlineKeyboardButton{
			Text:         "»",
			CallbackData: "modelpage:" + strconv.Itoa(page+1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
