package tg

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/messages"
)

const (
	defaultUpdateOffset = 0
	updatesTimeout      = 60
	timeoutSeconds      = 5
)

type config interface {
	Token() string
	OwnerID() int64
}

type messageModel interface {
	HandleIncomingMessage(ctx context.Context, msg messages.Message) error
	HandleCompletion(ctx context.Context, c messages.Completion) error
	Completions() <-chan messages.Completion
}

type Client struct {
	client  *tgbotapi.BotAPI
	ownerID int64
}

func New(config config) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(config.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}
	return &Client{client: client, ownerID: config.OwnerID()}, nil
}

func (c *Client) SendMessage(text string, userID int64) error {
	_, err := c.client.Send(tgbotapi.NewMessage(userID, text))
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

// ListenUpdates is the single control loop: every message and every
// background completion is handled here, one at a time.
func (c *Client) ListenUpdates(ctx context.Context, msgModel messageModel) {
	u := tgbotapi.NewUpdate(defaultUpdateOffset)
	u.Timeout = updatesTimeout

	updates := c.client.GetUpdatesChan(u)
	defer c.client.StopReceivingUpdates()

	logger.Info("Start listening for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop listening for messages")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Warn("updates channel closed")
				return
			}
			c.listenOnce(ctx, update, msgModel)
		case completion := <-msgModel.Completions():
			if err := msgModel.HandleCompletion(ctx, completion); err != nil {
				logger.Error("error delivering completion:", zap.Error(err))
			}
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, update tgbotapi.Update, msgModel messageModel) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if !c.allowed(update.Message.Chat.ID) {
		logger.Warn("message from a stranger ignored", zap.Int64("chat", update.Message.Chat.ID))
		return
	}
	logger.Info(update.Message.Text, zap.String("user", update.Message.From.UserName))

	ctx, cancel := context.WithTimeout(ctx, time.Second*timeoutSeconds)
	defer cancel()

	err := msgModel.HandleIncomingMessage(ctx, messages.Message{
		Text:   update.Message.Text,
		UserID: update.Message.Chat.ID,
	})
	if err != nil {
		logger.Error("error processing message:", zap.Error(err))
	}
}

func (c *Client) allowed(chatID int64) bool {
	return c.ownerID == 0 || c.ownerID == chatID
}
