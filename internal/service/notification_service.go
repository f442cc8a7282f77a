package service

import (
	"context"
	"fmt"
	"log"

	"fitsocial/internal/domain"
)

// fallbackActorName is used when the acting user's name cannot be resolved.
const fallbackActorName = "Un usuario"

// notificationTemplate fixes the title and body wording per type. The body
// always interpolates the acting user's display name.
type notificationTemplate struct {
	title string
	body  string
}

var notificationTemplates = map[string]notificationTemplate{
	domain.NotificationNewLike:      {"Nuevo me gusta", "%s le ha dado me gusta a tu publicación"},
	domain.NotificationNewComment:   {"Nuevo comentario", "%s ha comentado tu publicación"},
	domain.NotificationNewShare:     {"Publicación compartida", "%s ha compartido tu publicación"},
	domain.NotificationNewFollower:  {"Nuevo seguidor", "%s ha comenzado a seguirte"},
	domain.NotificationRoutineSaved: {"Rutina guardada", "%s ha guardado tu rutina"},
}

// NotificationService converts domain events into persisted notification
// records and pushes them to the recipient's live channels. A user is never
// notified of their own action.
type NotificationService struct {
	notifications domain.NotificationRepository
	users         domain.UserRepository
	pusher        Pusher
}

func NewNotificationService(notifications domain.NotificationRepository, users domain.UserRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		pusher:        pusher,
	}
}

// Notify persists and pushes a notification for an action actorID performed
// on something of recipientID's. Self-notifications are a silent no-op and
// return (nil, nil).
func (s *NotificationService) Notify(ctx context.Context, actorID, recipientID int64, typ string, refID int64, refKind string) (*domain.Notification, error) {
	if actorID == recipientID {
		return nil, nil
	}
	tpl, ok := notificationTemplates[typ]
	if !ok {
		return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrInvalidPayload, typ)
	}
	return s.deliver(ctx, recipientID, typ, tpl.title, fmt.Sprintf(tpl.body, s.actorName(ctx, actorID)), refID, refKind)
}

// AchievementUnlocked notifies a user of their own unlock. The actor here is
// the system, so actor suppression does not apply.
func (s *NotificationService) AchievementUnlocked(ctx context.Context, userID int64, def *domain.AchievementDefinition) (*domain.Notification, error) {
	body := fmt.Sprintf("Has desbloqueado el logro %s", def.Name)
	return s.deliver(ctx, userID, domain.NotificationAchievementUnlocked, "¡Logro desbloqueado!", body, def.ID, domain.RefKindAchievement)
}

func (s *NotificationService) deliver(ctx context.Context, recipientID int64, typ, title, body string, refID int64, refKind string) (*domain.Notification, error) {
	n := &domain.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Body:        body,
	}
	if refID != 0 {
		n.RefID = &refID
	}
	if refKind != "" {
		n.RefKind = &refKind
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	s.pusher.Push(recipientID, newNotificationEvent(n))
	return n, nil
}

// actorName resolves the acting user's display name, falling back to the
// username and finally to a fixed literal.
func (s *NotificationService) actorName(ctx context.Context, actorID int64) string {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil || u == nil {
		if err != nil {
			log.Printf("notifications: resolve actor %d: %v", actorID, err)
		}
		return fallbackActorName
	}
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return fallbackActorName
}

// Domain triggers. Each one recomputes the recipient from its own inputs and
// enforces the self-suppression at the call site as well as inside Notify.

// PostLiked fires when actorID reacts to ownerID's post.
func (s *NotificationService) PostLiked(ctx context.Context, actorID, ownerID, postID int64) error {
	if actorID == ownerID {
		return nil
	}
	_, err := s.Notify(ctx, actorID, ownerID, domain.NotificationNewLike, postID, domain.RefKindPost)
	return err
}

// CommentAdded fires when actorID comments on ownerID's post.
func (s *NotificationService) CommentAdded(ctx context.Context, actorID, ownerID, postID int64) error {
	if actorID == ownerID {
		return nil
	}
	_, err := s.Notify(ctx, actorID, ownerID, domain.NotificationNewComment, postID, domain.RefKindPost)
	return err
}

// PostShared fires when actorID shares ownerID's post.
func (s *NotificationService) PostShared(ctx context.Context, actorID, ownerID, postID int64) error {
	if actorID == ownerID {
		return nil
	}
	_, err := s.Notify(ctx, actorID, ownerID, domain.NotificationNewShare, postID, domain.RefKindPost)
	return err
}

// RoutineSaved fires when actorID saves ownerID's routine.
func (s *NotificationService) RoutineSaved(ctx context.Context, actorID, ownerID, routineID int64) error {
	if actorID == ownerID {
		return nil
	}
	_, err := s.Notify(ctx, actorID, ownerID, domain.NotificationRoutineSaved, routineID, domain.RefKindRoutine)
	return err
}

// UserFollowed fires when actorID follows followedID.
func (s *NotificationService) UserFollowed(ctx context.Context, actorID, followedID int64) error {
	if actorID == followedID {
		return nil
	}
	_, err := s.Notify(ctx, actorID, followedID, domain.NotificationNewFollower, actorID, domain.RefKindUser)
	return err
}
