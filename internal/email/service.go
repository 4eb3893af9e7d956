package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"clubsub/internal/logger"
	"clubsub/internal/metrics"
)

const (
	queueKey   = "emails"
	maxRetries = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
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

// NewWithClient wires an existing redis client; tests use it with redismock.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{
		redis:    client,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	metrics.EmailQueueLength.Inc()
	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) SendEnrollmentConfirmation(ctx context.Context, to, name, clubName string, endDate time.Time) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour subscription at %s is active until %s.\n\nSee you there!",
		name, clubName, endDate.Format("Jan 2, 2006 at 3:04 PM"),
	)
	if err := s.Send(ctx, to, name, "Subscription confirmed", body); err != nil {
		metrics.RecordEmail("enrollment_confirmation", "queue_failed")
	}
}

func (s *Service) SendFreezeNotice(ctx context.Context, to, name string, frozenUntil, newEndDate time.Time) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour subscription is frozen until %s. Your new end date is %s.",
		name, frozenUntil.Format("Jan 2, 2006"), newEndDate.Format("Jan 2, 2006"),
	)
	if err := s.Send(ctx, to, name, "Subscription frozen", body); err != nil {
		metrics.RecordEmail("freeze_notice", "queue_failed")
	}
}

// Start runs the queue worker until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	metrics.EmailQueueLength.Dec()

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(job); err != nil {
		logger.Errorf("Failed to send email to %s (try %d): %v", job.To, job.Tries, err)
		metrics.RecordEmail("generic", "failed")

		if job.Tries < maxRetries {
			if data, err := json.Marshal(job); err == nil {
				if s.redis.LPush(ctx, queueKey, data).Err() == nil {
					metrics.EmailQueueLength.Inc()
				}
			}
		} else {
			logger.Errorf("Dropping email to %s after %d tries", job.To, job.Tries)
		}
		return
	}

	metrics.RecordEmail("generic", "sent")
	logger.Infof("Email sent: %s to %s", job.Subject, job.To)
}

func (s *Service) deliver(job Job) error {
	addr := s.smtpHost + ":" + s.smtpPort

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.fromName, s.from, job.To, job.Subject, job.Body,
	))

	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	return smtp.SendMail(addr, auth, s.from, []string{job.To}, msg)
}
