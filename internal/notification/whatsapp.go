package notification

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

var ErrWhatsAppNotConfigured = errors.New("whatsapp sender not configured")

// messageCreator is the slice of the Twilio client the sender needs.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsAppSender delivers templated WhatsApp messages through Twilio's
// content API. All sends are best-effort; callers log and move on.
type WhatsAppSender struct {
	api        messageCreator
	from       string
	contentSID string
}

func NewWhatsAppSender(accountSID, authToken, from, contentSID string) *WhatsAppSender {
	if accountSID == "" || authToken == "" {
		return &WhatsAppSender{from: from, contentSID: contentSID}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &WhatsAppSender{api: client.Api, from: from, contentSID: contentSID}
}

func NewWhatsAppSenderWithAPI(api messageCreator, from, contentSID string) *WhatsAppSender {
	return &WhatsAppSender{api: api, from: from, contentSID: contentSID}
}

func (s *WhatsAppSender) Configured() bool {
	return s.api != nil
}

// SendMembershipReminder sends the activation/payment template. Variables
// are positional: {{1}} gym name, {{2}} upload-form query string.
func (s *WhatsAppSender) SendMembershipReminder(phone, gymName, membershipID, paymentID string) error {
	if s.api == nil {
		return ErrWhatsAppNotConfigured
	}

	formatted, err := FormatPhone(phone)
	if err != nil {
		metrics.RecordNotification("whatsapp", "invalid_phone")
		return err
	}

	variables, err := json.Marshal(map[string]string{
		"1": gymName,
		"2": fmt.Sprintf("?membershipId=%s&paymentId=%s", membershipID, paymentID),
	})
	if err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo("whatsapp:" + formatted)
	params.SetContentSid(s.contentSID)
	params.SetContentVariables(string(variables))

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		metrics.RecordNotification("whatsapp", "failed")
		return err
	}

	metrics.RecordNotification("whatsapp", "sent")
	if resp.Sid != nil {
		logger.Infof("WhatsApp message sent: %s", *resp.Sid)
	}
	return nil
}
