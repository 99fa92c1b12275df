package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

const (
	emailQueueKey  = "emails"
	emailFailedKey = "emails:failed"
	maxEmailTries  = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	HTML    string    `json:"html"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// EmailService queues outbound mail on a redis list and drains it in a
// background worker. Callers never block on SMTP.
type EmailService struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func NewEmailService(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *EmailService {
	return &EmailService{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewEmailServiceWithClient is used by tests to inject a redis mock.
func NewEmailServiceWithClient(client *redis.Client, fromEmail, fromName string) *EmailService {
	return &EmailService{redis: client, from: fromEmail, fromName: fromName}
}

func (s *EmailService) Send(ctx context.Context, to, name, subject, html string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		HTML:    html,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, emailQueueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		metrics.RecordNotification("email", "queue_failed")
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	metrics.RecordNotification("email", "queued")
	return nil
}

func (s *EmailService) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *EmailService) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, emailQueueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxEmailTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), emailQueueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxEmailTries)
			metrics.RecordNotification("email", "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification("email", "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *EmailService) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	message += "\r\n" + job.HTML

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *EmailService) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), emailFailedKey, data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *EmailService) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, emailQueueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *EmailService) Close() error {
	return s.redis.Close()
}
