package smssvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

type gatewayService struct {
	url    string
	apiKey string
	sender string
	client *http.Client
	logger core.Logger
}

var _ core.SMSService = (*gatewayService)(nil)

// NewGatewayService returns an SMSService backed by the configured HTTP SMS
// gateway.
func NewGatewayService(logger core.Logger) core.SMSService {
	return &gatewayService{
		url:    core.Conf.SMS.GatewayURL,
		apiKey: core.Conf.SMS.APIKey,
		sender: core.Conf.SMS.Sender,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (svc *gatewayService) Send(msg core.SMSMessage) error {
	payload, err := json.Marshal(struct {
		Sender string `json:"sender"`
		To     string `json:"to"`
		Body   string `json:"body"`
	}{svc.sender, msg.To, msg.Body})
	if err != nil {
		return errors.Wrap(err, "encoding SMS payload")
	}

	req, err := http.NewRequest(http.MethodPost, svc.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "building SMS request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling SMS gateway")
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return errors.Errorf("SMS gateway responded %d", res.StatusCode)
	}
	return nil
}

func (svc *gatewayService) SendAll(messages ...core.SMSMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := svc.Send(msg); err != nil {
				svc.logger.Error(fmt.Sprintf("sending SMS to %s", msg.To), err)
			}
		}()
	}
}
