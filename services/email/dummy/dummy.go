package dummy

import (
	"sync"

	"github.com/trezcool/chuo/core"
)

// Service records sent messages for inspection in tests.
type Service struct {
	mu   sync.Mutex
	sent []*core.EmailMessage

	// Err, when set, is returned by every SendMessage call.
	Err error
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{sent: make([]*core.EmailMessage, 0)}
}

func (svc *Service) SendMessage(msg *core.EmailMessage) error {
	if svc.Err != nil {
		return svc.Err
	}
	if err := msg.Render(); err != nil {
		return err
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}
	svc.mu.Lock()
	svc.sent = append(svc.sent, msg)
	svc.mu.Unlock()
	return nil
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		_ = svc.SendMessage(msg)
	}
}

func (svc *Service) Sent() []*core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]*core.EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *Service) Clear() {
	svc.mu.Lock()
	svc.sent = svc.sent[:0]
	svc.mu.Unlock()
}
