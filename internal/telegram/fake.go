package telegram

import (
	"context"
	"sync"
)

// SentMessage ghi lại một message Fake đã "gửi"
type SentMessage struct {
	ChatID   int64
	Text     string
	Item     MediaItem
	Items    []MediaItem
	Keyboard Keyboard
	Method   string
}

// EditedMessage ghi lại một lần edit trên Fake
type EditedMessage struct {
	ChatID    int64
	MessageID int64
	Item      MediaItem
	Keyboard  Keyboard
	Method    string
}

// Answer ghi lại một lần trả lời callback query trên Fake
type Answer struct {
	QueryID   string
	Text      string
	ShowAlert bool
}

// Fake là Transport in-memory cho test. Các lỗi inject qua FailChats:
// mọi thao tác gửi tới chat nằm trong đó đều trả lỗi tương ứng.
type Fake struct {
	mu        sync.Mutex
	nextID    int64
	Sent      []SentMessage
	Edits     []EditedMessage
	Answers   []Answer
	FailChats map[int64]error
}

// NewFake tạo Fake transport rỗng
func NewFake() *Fake {
	return &Fake{
		nextID:    1000,
		FailChats: make(map[int64]error),
	}
}

func (f *Fake) failFor(chatID int64) error {
	if err, ok := f.FailChats[chatID]; ok {
		return err
	}
	return nil
}

func (f *Fake) SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor(chatID); err != nil {
		return 0, err
	}
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, Text: text, Keyboard: keyboard, Method: "sendMessage"})
	return f.nextID, nil
}

func (f *Fake) SendMedia(ctx context.Context, chatID int64, item MediaItem, keyboard Keyboard) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor(chatID); err != nil {
		return 0, err
	}
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, Item: item, Keyboard: keyboard, Method: "sendMedia"})
	return f.nextID, nil
}

func (f *Fake) SendMediaBatch(ctx context.Context, chatID int64, items []MediaItem) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor(chatID); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for range items {
		f.nextID++
		ids = append(ids, f.nextID)
	}
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, Items: items, Method: "sendMediaGroup"})
	return ids, nil
}

func (f *Fake) EditMessageMedia(ctx context.Context, chatID int64, messageID int64, item MediaItem, keyboard Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor(chatID); err != nil {
		return err
	}
	f.Edits = append(f.Edits, EditedMessage{ChatID: chatID, MessageID: messageID, Item: item, Keyboard: keyboard, Method: "editMessageMedia"})
	return nil
}

func (f *Fake) EditMessageControls(ctx context.Context, chatID int64, messageID int64, keyboard Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor(chatID); err != nil {
		return err
	}
	f.Edits = append(f.Edits, EditedMessage{ChatID: chatID, MessageID: messageID, Keyboard: keyboard, Method: "editMessageReplyMarkup"})
	return nil
}

func (f *Fake) AnswerCallback(ctx context.Context, queryID string, text string, showAlert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, Answer{QueryID: queryID, Text: text, ShowAlert: showAlert})
	return nil
}

// LastSent trả về message gửi gần nhất, nil nếu chưa gửi gì
func (f *Fake) LastSent() *SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return nil
	}
	return &f.Sent[len(f.Sent)-1]
}

// SentTo trả về các message đã gửi tới một chat
func (f *Fake) SentTo(chatID int64) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []SentMessage{}
	for _, m := range f.Sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
