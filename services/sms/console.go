package smssvc

import (
	"log"

	"github.com/trezcool/chuo/core"
)

type consoleService struct{}

var _ core.SMSService = (*consoleService)(nil)

// NewConsoleService returns an SMSService that writes messages to the standard
// logger. For local development.
func NewConsoleService() core.SMSService {
	return consoleService{}
}

func (consoleService) Send(msg core.SMSMessage) error {
	log.Printf("SMS to %s: %s", msg.To, msg.Body)
	return nil
}

func (svc consoleService) SendAll(messages ...core.SMSMessage) {
	for _, msg := range messages {
		_ = svc.Send(msg)
	}
}
