package dummy

import (
	"sync"

	"github.com/trezcool/chuo/core"
)

// Service records sent messages for inspection in tests.
type Service struct {
	mu   sync.Mutex
	sent []core.SMSMessage

	// Err, when set, is returned by every Send call.
	Err error
}

var _ core.SMSService = (*Service)(nil)

func NewService() *Service {
	return &Service{sent: make([]core.SMSMessage, 0)}
}

func (svc *Service) Send(msg core.SMSMessage) error {
	if svc.Err != nil {
		return svc.Err
	}
	svc.mu.Lock()
	svc.sent = append(svc.sent, msg)
	svc.mu.Unlock()
	return nil
}

func (svc *Service) SendAll(messages ...core.SMSMessage) {
	for _, msg := range messages {
		_ = svc.Send(msg)
	}
}

func (svc *Service) Sent() []core.SMSMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.SMSMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}
