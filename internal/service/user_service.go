package service

import (
	"context"
	"fmt"
	"time"

	"github.com/juliog922/chatlink-v2/internal/domain"
	"github.com/juliog922/chatlink-v2/internal/phone"
	"github.com/juliog922/chatlink-v2/internal/repo/postgres"
	"github.com/juliog922/chatlink-v2/internal/wabot"
	"github.com/juliog922/chatlink-v2/pkg/events"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

type UserService interface {
	Create(ctx context.Context, req *domain.CreateUserRequest) (int64, error)
	List(ctx context.Context) ([]domain.User, error)
	// Delete removes the user's remote device session (if one matches
	// the stored phone) before removing the local record. authToken is
	// the inbound shared-secret credential, forwarded verbatim.
	Delete(ctx context.Context, id int64, authToken string) error
}

type userService struct {
	users    postgres.UserRepository
	devices  wabot.DeviceRegistry
	eventBus events.Publisher
}

func NewUserService(users postgres.UserRepository, devices wabot.DeviceRegistry, eventBus events.Publisher) UserService {
	return &userService{
		users:    users,
		devices:  devices,
		eventBus: eventBus,
	}
}

func (s *userService) Create(ctx context.Context, req *domain.CreateUserRequest) (int64, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, req)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, events.UserCreated, events.UserCreatedEvent{
		UserID:    id,
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	})

	return id, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Delete walks the deletion saga. Remote cleanup strictly precedes the
// local delete: a local record must never disappear while a matching
// remote session survives. The reverse window (remote gone, local
// delete fails) is accepted and left to operator reconciliation.
func (s *userService) Delete(ctx context.Context, id int64, authToken string) error {
	storedPhone, err := s.users.GetPhone(ctx, id)
	if err != nil {
		return err
	}
	phoneNorm := phone.Normalize(storedPhone)
	logger.DebugContext(ctx, "user phone loaded", "user_id", id, "phone_norm", phoneNorm)

	// A transport failure here is terminal: the remote service may
	// still hold a session for this user, so the local record stays.
	// A non-success status or parse failure already degraded to an
	// empty list inside the client.
	devices, err := s.devices.ListDevices(ctx, authToken)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	logger.InfoContext(ctx, "devices listed", "count", len(devices))

	// First match wins, in listed order.
	matchedJID := ""
	for _, d := range devices {
		if phone.Matches(phone.Normalize(d.JID), phoneNorm) {
			matchedJID = d.JID
			break
		}
	}

	if matchedJID != "" {
		logger.InfoContext(ctx, "matched device; deleting remote session first", "jid", matchedJID)
		if err := s.devices.DeleteDevice(ctx, matchedJID, authToken); err != nil {
			// Abort before touching the local record, whatever the cause.
			return fmt.Errorf("delete device %s: %w", matchedJID, err)
		}
		s.publish(ctx, events.DeviceUnlinked, events.DeviceUnlinkedEvent{
			UserID:     id,
			JID:        matchedJID,
			UnlinkedAt: time.Now().UTC(),
		})
	} else {
		logger.InfoContext(ctx, "no device matched; deleting local record only", "user_id", id)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.UserDeleted, events.UserDeletedEvent{
		UserID:    id,
		DeletedAt: time.Now().UTC(),
	})

	return nil
}

// publish is fire-and-forget: audit events never fail the request.
func (s *userService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}
