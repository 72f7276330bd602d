package dep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	brevo "github.com/getbrevo/brevo-go/lib"

	"aif/config"
)

var (
	sendEmailUrl = "https://api.brevo.com/v3/smtp/email"
)

type brevoResp struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Sender struct {
	Email string
	Name  string
}

// SendEmail is one provider call for one destination address. The dispatch
// loop builds one of these per recipient so that each row gets its own
// tracking pixel.
type SendEmail struct {
	From        *Sender
	To          string
	ReplyTo     string
	Subject     string
	HtmlContent string
	TextContent string
}

type EmailService interface {
	SendEmail(ctx context.Context, sendEmail *SendEmail) error
	Close(ctx context.Context) error
}

type emailService struct {
	apiKey string
}

func NewEmailService(_ context.Context, cfg config.Brevo) (EmailService, error) {
	return &emailService{
		apiKey: cfg.APIKey,
	}, nil
}

func (s *emailService) SendEmail(ctx context.Context, sendEmail *SendEmail) error {
	body := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Email: sendEmail.From.Email,
			Name:  sendEmail.From.Name,
		},
		To:          []brevo.SendSmtpEmailTo{{Email: sendEmail.To}},
		Subject:     sendEmail.Subject,
		HtmlContent: sendEmail.HtmlContent,
		TextContent: sendEmail.TextContent,
	}

	if sendEmail.ReplyTo != "" {
		body.ReplyTo = &brevo.SendSmtpEmailReplyTo{
			Email: sendEmail.ReplyTo,
		}
	}

	return s.postHttpRequest(ctx, sendEmailUrl, body)
}

func (s *emailService) Close(_ context.Context) error {
	return nil
}

func (s *emailService) postHttpRequest(ctx context.Context, url string, body interface{}) error {
	js, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(js))
	if err != nil {
		return err
	}

	req.Header.Add("accept", "application/json")
	req.Header.Add("content-type", "application/json")
	req.Header.Add("api-key", s.apiKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = res.Body.Close()
	}()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	brevoResp := new(brevoResp)
	if err := json.Unmarshal(b, brevoResp); err != nil {
		return err
	}

	if brevoResp.Message != "" {
		return fmt.Errorf("encounter brevo error: %s, code: %s", brevoResp.Message, brevoResp.Code)
	}

	return nil
}
