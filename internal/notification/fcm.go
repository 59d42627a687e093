package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService pushes a message to an FCM topic for every new report, so that
// admin devices subscribed to the topic learn about it.
type FCMService struct {
	client messageSender
	topic  string
}

// NewFCMService initializes the Firebase app with the same service-account
// options used for Drive and Sheets.
func NewFCMService(ctx context.Context, projectID, topic string, opts ...option.ClientOption) (*FCMService, error) {
	if topic == "" {
		return nil, fmt.Errorf("fcm topic is empty")
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client, topic: topic}, nil
}

func (s *FCMService) NotifyReportSubmitted(ctx context.Context, rec report.Record) error {
	id, err := s.client.Send(ctx, reportMessage(s.topic, rec))
	if err != nil {
		return fmt.Errorf("fcm send to topic %s: %w", s.topic, err)
	}
	logger.Debug("FCM: report notification sent", "topic", s.topic, "message_id", id)
	return nil
}

func reportMessage(topic string, rec report.Record) *messaging.Message {
	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: "Laporan baharu: " + rec.CompetitionName,
			Body:  fmt.Sprintf("%s (%s) - %s", rec.StudentNames, rec.Achievement, rec.Date),
		},
		Data: map[string]string{
			"timestamp":         rec.Timestamp,
			"nama_pertandingan": rec.CompetitionName,
			"tarikh":            rec.Date,
			"pencapaian":        rec.Achievement,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}
}
