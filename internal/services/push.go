package services

import (
	"context"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/config"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Pusher delivers one notification. *apns2.Client satisfies it.
type Pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// PushService notifies crime reporters on their registered device
type PushService struct {
	pusher    Pusher
	topic     string
	crimeRepo *repository.CrimeRepository
	userRepo  *repository.UserRepository
}

// NewPushService loads the APNs certificate. Without one the service is a no-op.
func NewPushService(cfg config.APNsConfig, crimeRepo *repository.CrimeRepository, userRepo *repository.UserRepository) (*PushService, error) {
	s := &PushService{
		topic:     cfg.Topic,
		crimeRepo: crimeRepo,
		userRepo:  userRepo,
	}
	if cfg.CertFile == "" {
		return s, nil
	}

	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPass)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}
	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	s.pusher = client
	return s, nil
}

// Enabled reports whether pushes are delivered
func (s *PushService) Enabled() bool {
	return s != nil && s.pusher != nil
}

// NotifyReporter pushes an alert to the reporter of crimeID, if the crime has
// one with a stored device token and the reporter is not the actor.
// Failures are logged only.
func (s *PushService) NotifyReporter(ctx context.Context, crimeID, actorID, title, body string) {
	if !s.Enabled() {
		return
	}

	crime, err := s.crimeRepo.GetByID(ctx, crimeID)
	if err != nil {
		log.Error().Err(err).Str("crime_id", crimeID).Msg("Failed to load crime for push")
		return
	}
	if crime.UserID == nil || *crime.UserID == actorID {
		return
	}
	user, err := s.userRepo.GetByID(ctx, *crime.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", *crime.UserID).Msg("Failed to load reporter for push")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       s.topic,
		Payload: payload.NewPayload().
			AlertTitle(title).
			AlertBody(body).
			Sound("default").
			Custom("crime_id", crimeID),
	}

	res, err := s.pusher.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().
			Str("user_id", user.ID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
		return
	}

	log.Debug().
		Str("user_id", user.ID).
		Str("crime_id", crimeID).
		Str("apns_id", res.ApnsID).
		Msg("Push notification sent")
}
