package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// EventKind classifies a normalized inbound event. Adapters translate
// platform specifics (commands, button presses) into kinds; free text that
// matches no button is an answer attempt.
type EventKind int

const (
	EventStart EventKind = iota
	EventNewQuestion
	EventAnswer
	EventSurrender
	EventScore
	EventCancel
)

// Event is a normalized inbound message from an adapter.
type Event struct {
	UserID string
	Kind   EventKind
	Text   string
}

// Reply is what the adapter renders back to the user. RemoveKeyboard is set
// when the session ended and the quick-reply keyboard should go away.
type Reply struct {
	Text           string
	RemoveKeyboard bool
}

// Quick-reply button labels. Adapters render them as platform-native
// keyboards and KindForText maps them back to event kinds.
const (
	ButtonNewQuestion = "Новый вопрос"
	ButtonSurrender   = "Сдаться"
	ButtonScore       = "Мой счет"
)

// MsgStoreFailure is the generic reply adapters send when the engine
// returns an error. A single failed request must not crash the process.
const MsgStoreFailure = "Что-то пошло не так, попробуй еще раз."

// KeyboardLayout returns the fixed quick-reply options, row by row.
func KeyboardLayout() [][]string {
	return [][]string{
		{ButtonNewQuestion, ButtonSurrender},
		{ButtonScore},
	}
}

// KindForText maps plain message text to an event kind. Commands like
// /start and /cancel are adapter-specific and mapped before this.
func KindForText(text string) EventKind {
	switch text {
	case ButtonNewQuestion:
		return EventNewQuestion
	case ButtonSurrender:
		return EventSurrender
	case ButtonScore:
		return EventScore
	default:
		return EventAnswer
	}
}

// Rules are the scoring constants that diverged between historical bot
// variants, made explicit per-deployment configuration.
type Rules struct {
	MaxTries         int
	CorrectReward    int
	SurrenderPenalty int
	ExhaustPenalty   int
}

// DefaultRules matches the strictest historical variant: three tries per
// question, +1 for a correct answer, -1 on surrender, -2 when tries run out.
func DefaultRules() Rules {
	return Rules{
		MaxTries:         3,
		CorrectReward:    1,
		SurrenderPenalty: 1,
		ExhaustPenalty:   2,
	}
}

// Engine is the conversation state machine. All session mutations for a
// given user are serialized by a per-user mutex, so the read-decide-write
// sequence in Handle is a single logical transaction.
type Engine struct {
	bank     QuestionBank
	sessions SessionStore
	rules    Rules
	logger   *slog.Logger

	// userLocks grows with the number of distinct users and is never
	// pruned: dropping an entry while another goroutine still waits on
	// its mutex would let two transitions for the same user interleave.
	// Two words per user is an acceptable price for that guarantee.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewEngine wires the state machine to its stores. A zero score delta is a
// valid rule (historical variants ran with no surrender penalty), so only
// MaxTries is coerced: zero tries per question is meaningless.
func NewEngine(bank QuestionBank, sessions SessionStore, rules Rules, logger *slog.Logger) *Engine {
	if rules.MaxTries <= 0 {
		rules.MaxTries = DefaultRules().MaxTries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		bank:      bank,
		sessions:  sessions,
		rules:     rules,
		logger:    logger,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// Rules returns the scoring constants the engine runs with.
func (e *Engine) Rules() Rules {
	return e.rules
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// Handle processes one normalized event and performs the resulting store
// mutation. Store errors are returned to the adapter, which shows
// MsgStoreFailure instead of crashing.
func (e *Engine) Handle(ctx context.Context, ev Event) (Reply, error) {
	lock := e.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	if ev.Kind == EventStart {
		return e.startSession(ctx, ev.UserID)
	}

	session, err := e.sessions.Get(ctx, ev.UserID)
	if errors.Is(err, ErrNoSession) {
		// A message before /start is a normal branch: create the
		// session implicitly and process the event against it.
		session, err = e.sessions.Create(ctx, ev.UserID)
		if err != nil {
			return Reply{}, fmt.Errorf("create session for %s: %w", ev.UserID, err)
		}
		e.logger.Debug("session_created_implicitly", "user_id", ev.UserID)
	} else if err != nil {
		return Reply{}, fmt.Errorf("get session for %s: %w", ev.UserID, err)
	}

	switch ev.Kind {
	case EventCancel:
		return e.endSession(ctx, session)
	case EventScore:
		e.logger.Debug("score_requested", "user_id", ev.UserID, "score", session.Score)
		return Reply{Text: fmt.Sprintf("Твой счет: %d очков.", session.Score)}, nil
	}

	switch session.State() {
	case StateNoQuestion:
		if ev.Kind == EventNewQuestion {
			return e.askQuestion(ctx, session)
		}
	case StateAwaitingAnswer:
		if ev.Kind == EventSurrender {
			return e.surrender(ctx, session)
		}
		// With a question open, any other text counts as an answer
		// attempt, button labels included.
		return e.checkAnswer(ctx, session, ev.Text)
	}

	e.logger.Debug("unrecognized_event", "user_id", ev.UserID)
	return Reply{Text: "Вот сейчас не понял тебя :( Нажми на одну из кнопок ниже."}, nil
}

func (e *Engine) startSession(ctx context.Context, userID string) (Reply, error) {
	if _, err := e.sessions.Create(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("create session for %s: %w", userID, err)
	}
	e.logger.Info("user_joined", "user_id", userID)
	text := fmt.Sprintf(
		"Привет! Добро пожаловать на викторину. На каждый вопрос у тебя только %d попытки. "+
			"Нажми на кнопку «%s». Для отмены игры набери /cancel",
		e.rules.MaxTries, ButtonNewQuestion)
	return Reply{Text: text}, nil
}

func (e *Engine) endSession(ctx context.Context, session Session) (Reply, error) {
	if err := e.sessions.Delete(ctx, session.UserID); err != nil {
		return Reply{}, fmt.Errorf("delete session for %s: %w", session.UserID, err)
	}
	e.logger.Info("user_left", "user_id", session.UserID, "score", session.Score)
	return Reply{
		Text:           fmt.Sprintf("Спасибо за игру! Вы заработали %d очков.", session.Score),
		RemoveKeyboard: true,
	}, nil
}

func (e *Engine) askQuestion(ctx context.Context, session Session) (Reply, error) {
	id, err := e.bank.SampleRandom(ctx)
	if errors.Is(err, ErrBankEmpty) {
		e.logger.Warn("question_bank_empty", "user_id", session.UserID)
		return Reply{Text: "Пока нет доступных вопросов, загляни позже."}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("sample question: %w", err)
	}

	record, err := e.bank.Get(ctx, id)
	if err != nil {
		return Reply{}, fmt.Errorf("get question %s: %w", id, err)
	}

	session.CurrentQuestionID = id
	session.TriesUsed = 1
	if err := e.sessions.Update(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
	}

	e.logger.Debug("question_asked", "user_id", session.UserID, "question_id", id)
	return Reply{Text: record.Question}, nil
}

func (e *Engine) surrender(ctx context.Context, session Session) (Reply, error) {
	record, err := e.bank.Get(ctx, session.CurrentQuestionID)
	if err != nil {
		return Reply{}, fmt.Errorf("get question %s: %w", session.CurrentQuestionID, err)
	}

	session.CurrentQuestionID = ""
	session.TriesUsed = 1
	session.Score -= e.rules.SurrenderPenalty
	if err := e.sessions.Update(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
	}

	e.logger.Debug("user_surrendered", "user_id", session.UserID, "question_id", record.ID)
	text := fmt.Sprintf(
		"Твой счет понижен на %d. Вот тебе правильный ответ:\n%s\n\nЧтобы продолжить, нажми «%s»",
		e.rules.SurrenderPenalty, record.FullAnswer, ButtonNewQuestion)
	return Reply{Text: text}, nil
}

func (e *Engine) checkAnswer(ctx context.Context, session Session, text string) (Reply, error) {
	record, err := e.bank.Get(ctx, session.CurrentQuestionID)
	if errors.Is(err, ErrQuestionNotFound) {
		// The open question vanished from the bank. Close it so the
		// user is not stuck answering a question nobody can check.
		session.CurrentQuestionID = ""
		session.TriesUsed = 1
		if err := e.sessions.Update(ctx, session); err != nil {
			return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
		}
		e.logger.Warn("open_question_missing", "user_id", session.UserID)
		return Reply{Text: fmt.Sprintf("Этот вопрос больше недоступен. Нажми «%s».", ButtonNewQuestion)}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("get question %s: %w", session.CurrentQuestionID, err)
	}

	if NormalizeForMatching(text) == record.CleanAnswer {
		session.CurrentQuestionID = ""
		session.TriesUsed = 1
		session.Score += e.rules.CorrectReward
		if err := e.sessions.Update(ctx, session); err != nil {
			return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
		}
		e.logger.Debug("answer_correct", "user_id", session.UserID, "question_id", record.ID)
		text := fmt.Sprintf(
			"Правильно! Твой счет +%d! Для следующего вопроса нажми «%s»",
			e.rules.CorrectReward, ButtonNewQuestion)
		return Reply{Text: text}, nil
	}

	if session.TriesUsed < e.rules.MaxTries {
		triesLeft := e.rules.MaxTries - session.TriesUsed
		session.TriesUsed++
		if err := e.sessions.Update(ctx, session); err != nil {
			return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
		}
		e.logger.Debug("answer_wrong", "user_id", session.UserID,
			"question_id", record.ID, "tries_left", triesLeft)
		return Reply{Text: fmt.Sprintf("Неправильно :( Попробуй еще раз, осталось попыток: %d", triesLeft)}, nil
	}

	session.CurrentQuestionID = ""
	session.TriesUsed = 1
	session.Score -= e.rules.ExhaustPenalty
	if err := e.sessions.Update(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("update session for %s: %w", session.UserID, err)
	}
	e.logger.Debug("tries_exhausted", "user_id", session.UserID, "question_id", record.ID)
	text = fmt.Sprintf(
		"У тебя не осталось попыток, твой счет -%d. Нажми на «%s»",
		e.rules.ExhaustPenalty, ButtonNewQuestion)
	return Reply{Text: text}, nil
}
