package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"github.com/SevereCloud/vksdk/v2/object"

	"github.com/korjavin/quizbot/quiz"
)

// VK runs the game over VK group long polling. VK has no bot commands, so
// /start and /cancel are recognized as plain text.
type VK struct {
	vk     *api.VK
	lp     *longpoll.LongPoll
	engine Engine
	logger *slog.Logger
}

// NewVK creates the VK adapter for the group the token belongs to.
func NewVK(token string, engine Engine, logger *slog.Logger) (*VK, error) {
	vk := api.NewVK(token)

	group, err := vk.GroupsGetByID(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve group: %w", err)
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("token does not belong to a group")
	}

	lp, err := longpoll.NewLongPoll(vk, group[0].ID)
	if err != nil {
		return nil, fmt.Errorf("create long poll: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &VK{vk: vk, lp: lp, engine: engine, logger: logger}
	lp.MessageNew(b.handleMessage)
	return b, nil
}

// Run polls for events until ctx is cancelled.
func (b *VK) Run(ctx context.Context) error {
	b.logger.Info("vk_start", "group_id", b.lp.GroupID)

	go func() {
		<-ctx.Done()
		b.lp.Shutdown()
	}()

	return b.lp.Run()
}

func (b *VK) handleMessage(ctx context.Context, obj events.MessageNewObject) {
	peerID := obj.Message.PeerID
	userID := strconv.Itoa(peerID)
	text := obj.Message.Text
	b.logger.Debug("vk_message", "user_id", userID)

	ev := quiz.Event{UserID: userID, Text: text}
	switch text {
	case "/start":
		ev.Kind = quiz.EventStart
	case "/cancel":
		ev.Kind = quiz.EventCancel
	default:
		ev.Kind = quiz.KindForText(text)
	}

	reply, err := b.engine.Handle(ctx, ev)
	if err != nil {
		b.logger.Error("engine_error", "user_id", userID, "error", err.Error())
		reply = quiz.Reply{Text: quiz.MsgStoreFailure}
	}

	keyboard := vkKeyboard(reply.RemoveKeyboard)
	_, err = b.vk.MessagesSend(api.Params{
		"peer_id":   peerID,
		"message":   reply.Text,
		"random_id": rand.Int31(),
		"keyboard":  keyboard.ToJSON(),
	})
	if err != nil {
		b.logger.Error("vk_send_error", "user_id", userID, "error", err.Error())
	}
}

func vkKeyboard(remove bool) *object.MessagesKeyboard {
	keyboard := object.NewMessagesKeyboard(object.BaseBoolInt(remove))
	if remove {
		// An empty one-time keyboard hides the buttons on the client.
		return keyboard
	}
	for _, labels := range quiz.KeyboardLayout() {
		keyboard.AddRow()
		for _, label := range labels {
			keyboard.AddTextButton(label, "", "primary")
		}
	}
	return keyboard
}
