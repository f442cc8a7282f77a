package domain

import "time"

// User represents an application user. Account management lives in the CRUD
// layer; this core only reads identity and display data.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserStats is the aggregate-counter snapshot the achievement evaluator
// reads in one round-trip. The counters are maintained by the CRUD layer.
type UserStats struct {
	UserID    int64 `db:"user_id" json:"user_id"`
	Posts     int   `db:"posts" json:"posts"`
	Followers int   `db:"followers" json:"followers"`
	Likes     int   `db:"likes" json:"likes"`
	Routines  int   `db:"routines" json:"routines"`
}

// Attachment kinds carried by a message.
const (
	AttachmentImage = "image"
	AttachmentAudio = "audio"
)

// Message is a direct message between two users. Immutable once persisted
// except for the unread -> read transition. Exactly one of Content and the
// attachment fields is present.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	RecipientID    int64     `db:"recipient_id" json:"recipient_id"`
	Content        *string   `db:"content" json:"content,omitempty"`
	AttachmentKind *string   `db:"attachment_kind" json:"attachment_kind,omitempty"`
	AttachmentURL  *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	AttachmentName *string   `db:"attachment_name" json:"attachment_name,omitempty"`
	ClientTag      *string   `db:"client_tag" json:"client_tag,omitempty"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasAttachment reports whether the message carries an attachment descriptor.
func (m *Message) HasAttachment() bool {
	return m.AttachmentKind != nil && *m.AttachmentKind != ""
}

// Notification types, one per domain trigger.
const (
	NotificationNewLike             = "new_like"
	NotificationNewComment          = "new_comment"
	NotificationNewShare            = "new_share"
	NotificationNewFollower         = "new_follower"
	NotificationRoutineSaved        = "routine_saved"
	NotificationAchievementUnlocked = "achievement_unlocked"
)

// Reference kinds a notification may point at.
const (
	RefKindPost        = "post"
	RefKindRoutine     = "rutina"
	RefKindUser        = "usuario"
	RefKindAchievement = "logro"
)

// Notification is a persisted fan-out record pushed to the recipient's
// live channel.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	RefID       *int64    `db:"ref_id" json:"ref_id,omitempty"`
	RefKind     *string   `db:"ref_kind" json:"ref_kind,omitempty"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Achievement categories name the stats counter a definition is checked
// against.
const (
	AchievementCategoryPosts     = "posts"
	AchievementCategoryFollowers = "followers"
	AchievementCategoryLikes     = "likes"
	AchievementCategoryRoutines  = "routines"
)

// AchievementDefinition is a static catalog entry, read-only after seeding.
type AchievementDefinition struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Category  string `db:"category" json:"category"`
	Threshold int    `db:"threshold" json:"threshold"`
	Icon      string `db:"icon" json:"icon"`
}

// AchievementUnlock joins a user to an unlocked achievement. At most one row
// per (user, achievement) pair; a duplicate insert is a no-op.
type AchievementUnlock struct {
	UserID        int64     `db:"user_id" json:"user_id"`
	AchievementID int64     `db:"achievement_id" json:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at" json:"unlocked_at"`
}
