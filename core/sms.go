package core

type (
	SMSMessage struct {
		To   string // recipient phone number
		Body string
	}

	// SMSService is any service that can send text messages.
	SMSService interface {
		// Send sends one message synchronously, reporting any transport failure.
		Send(msg SMSMessage) error
		// SendAll sends messages concurrently, fire-and-forget.
		SendAll(messages ...SMSMessage)
	}
)
