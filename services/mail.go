package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Mailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
}

func NewMailer(apiKey, senderEmail string) *Mailer {
	return &Mailer{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  "Course Platform",
		endpoint:    "https://api.sendgrid.com/v3/mail/send",
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
type sgRequest struct {
	Personalizations []struct {
		To []sgEmail `json:"to"`
	} `json:"personalizations"`
	From    sgEmail     `json:"from"`
	Subject string      `json:"subject"`
	Content []sgContent `json:"content"`
}

// Send delivers a single HTML mail.
func (m *Mailer) Send(toEmail, subject, html string) error {
	body := sgRequest{
		Personalizations: []struct {
			To []sgEmail `json:"to"`
		}{
			{To: []sgEmail{{Email: toEmail}}},
		},
		From: sgEmail{
			Email: m.senderEmail,
			Name:  m.senderName,
		},
		Subject: subject,
		Content: []sgContent{{Type: "text/html", Value: html}},
	}

	bodyBytes, _ := json.Marshal(body)

	req, err := http.NewRequest(http.MethodPost, m.endpoint, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail provider error: %v: %w", err, ErrProvider)
	}
	defer resp.Body.Close()

	// SendGrid answers 202 on success
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail provider error: status=%d body=%s: %w", resp.StatusCode, raw, ErrProvider)
	}

	return nil
}

// OrderConfirmationHTML renders the order confirmation body.
func OrderConfirmationHTML(orderCode string, courses []OrderLine, date time.Time) string {
	lines := ""
	for _, c := range courses {
		lines += fmt.Sprintf("<li>%s - $%.2f</li>", c.Name, c.Price)
	}
	return fmt.Sprintf(`
		<html>
		<body>
			<h3>Thank you for your order</h3>
			<p>Order %s, placed on %s.</p>
			<ul>%s</ul>
		</body>
		</html>`, orderCode, date.Format("January 2, 2006"), lines)
}

type OrderLine struct {
	Name  string
	Price float64
}

// QuestionReplyHTML renders the mail sent when an instructor answers a
// question thread.
func QuestionReplyHTML(userName, lessonTitle string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h3>Your question has a new reply</h3>
			<p>Hi %s, your question on "%s" received a reply.</p>
		</body>
		</html>`, userName, lessonTitle)
}
