package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fitsocial/internal/domain"
	"fitsocial/internal/service"
)

func newNotificationFixture() (*MockNotificationRepo, *MockUserRepo, *fakePusher, *service.NotificationService) {
	notifRepo := new(MockNotificationRepo)
	userRepo := new(MockUserRepo)
	pusher := &fakePusher{}
	svc := service.NewNotificationService(notifRepo, userRepo, pusher)
	return notifRepo, userRepo, pusher, svc
}

func TestNotify(t *testing.T) {
	t.Run("PersistsAndPushes", func(t *testing.T) {
		notifRepo, userRepo, pusher, svc := newNotificationFixture()

		name := "Ana"
		userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "ana", DisplayName: &name}, nil)
		notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.RecipientID == 2 && n.Type == domain.NotificationNewComment
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Notification).ID = 9
		}).Return(nil)

		n, err := svc.Notify(context.Background(), 1, 2, domain.NotificationNewComment, 5, domain.RefKindPost)
		assert.NoError(t, err)
		assert.Equal(t, "Nuevo comentario", n.Title)
		assert.Contains(t, n.Body, "Ana")
		assert.Equal(t, int64(5), *n.RefID)
		assert.Equal(t, domain.RefKindPost, *n.RefKind)

		pushes := pusher.forUser(2)
		assert.Len(t, pushes, 1)
		ev, ok := pushes[0].Event.(service.NewNotificationEvent)
		assert.True(t, ok)
		assert.Equal(t, "new_notification", ev.Type)
		assert.Equal(t, domain.NotificationNewComment, ev.Notification)
	})

	t.Run("SelfNotificationIsNoOp", func(t *testing.T) {
		notifRepo, _, pusher, svc := newNotificationFixture()

		n, err := svc.Notify(context.Background(), 3, 3, domain.NotificationNewLike, 1, domain.RefKindPost)
		assert.NoError(t, err)
		assert.Nil(t, n)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, pusher.all())
	})

	t.Run("ActorNameFallsBack", func(t *testing.T) {
		notifRepo, userRepo, _, svc := newNotificationFixture()

		userRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)
		notifRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		n, err := svc.Notify(context.Background(), 1, 2, domain.NotificationNewFollower, 1, domain.RefKindUser)
		assert.NoError(t, err)
		assert.Contains(t, n.Body, "Un usuario")
	})

	t.Run("UnknownTypeRejected", func(t *testing.T) {
		_, _, _, svc := newNotificationFixture()

		_, err := svc.Notify(context.Background(), 1, 2, "mystery", 0, "")
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

// Every domain trigger suppresses self-notification at the call site.
func TestTriggersSuppressSelf(t *testing.T) {
	notifRepo, _, pusher, svc := newNotificationFixture()
	ctx := context.Background()

	assert.NoError(t, svc.PostLiked(ctx, 4, 4, 10))
	assert.NoError(t, svc.CommentAdded(ctx, 4, 4, 10))
	assert.NoError(t, svc.PostShared(ctx, 4, 4, 10))
	assert.NoError(t, svc.RoutineSaved(ctx, 4, 4, 11))
	assert.NoError(t, svc.UserFollowed(ctx, 4, 4))

	notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pusher.all())
}

func TestTriggersNotifyOwner(t *testing.T) {
	cases := []struct {
		name     string
		fire     func(svc *service.NotificationService) error
		wantType string
	}{
		{"Like", func(svc *service.NotificationService) error { return svc.PostLiked(context.Background(), 1, 2, 10) }, domain.NotificationNewLike},
		{"Comment", func(svc *service.NotificationService) error { return svc.CommentAdded(context.Background(), 1, 2, 10) }, domain.NotificationNewComment},
		{"Share", func(svc *service.NotificationService) error { return svc.PostShared(context.Background(), 1, 2, 10) }, domain.NotificationNewShare},
		{"RoutineSaved", func(svc *service.NotificationService) error { return svc.RoutineSaved(context.Background(), 1, 2, 11) }, domain.NotificationRoutineSaved},
		{"Follow", func(svc *service.NotificationService) error { return svc.UserFollowed(context.Background(), 1, 2) }, domain.NotificationNewFollower},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notifRepo, userRepo, pusher, svc := newNotificationFixture()

			userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "carlos"}, nil)
			notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
				return n.RecipientID == 2 && n.Type == tc.wantType
			})).Return(nil)

			assert.NoError(t, tc.fire(svc))
			notifRepo.AssertExpectations(t)
			assert.Len(t, pusher.forUser(2), 1)
		})
	}
}

func TestAchievementUnlockedNotifiesSelf(t *testing.T) {
	notifRepo, _, pusher, svc := newNotificationFixture()

	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientID == 5 && n.Type == domain.NotificationAchievementUnlocked
	})).Return(nil)

	def := &domain.AchievementDefinition{ID: 3, Name: "Social", Category: domain.AchievementCategoryFollowers, Threshold: 10}
	n, err := svc.AchievementUnlocked(context.Background(), 5, def)
	assert.NoError(t, err)
	assert.Contains(t, n.Body, "Social")
	assert.Equal(t, domain.RefKindAchievement, *n.RefKind)
	assert.Len(t, pusher.forUser(5), 1)
}
