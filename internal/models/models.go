package models

import "time"

// AccountKind distinguishes durable registered accounts from ephemeral
// quick-access sessions.
type AccountKind string

const (
	KindRegistered  AccountKind = "registered"
	KindQuickAccess AccountKind = "quick_access"
)

// Principal represents a resolved identity in the system
type Principal struct {
	ID           string      `json:"id"`
	DisplayName  string      `json:"display_name"`
	Kind         AccountKind `json:"kind"`
	Email        *string     `json:"email,omitempty"`
	PasswordHash string      `json:"-"`
	Banned       bool        `json:"-"`
	Verified     bool        `json:"verified"`
	Online       bool        `json:"online"`
	LastSeenAt   time.Time   `json:"last_seen_at"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsQuickAccess reports whether the principal is an ephemeral session.
func (p *Principal) IsQuickAccess() bool {
	return p.Kind == KindQuickAccess
}

// Conversation represents the single thread between an unordered pair of
// principals. UserAID is always the lower id string.
type Conversation struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Other returns the counterpart of the given participant.
func (c *Conversation) Other(principalID string) string {
	if c.UserAID == principalID {
		return c.UserBID
	}
	return c.UserAID
}

// Has reports whether the principal is one of the two participants.
func (c *Conversation) Has(principalID string) bool {
	return c.UserAID == principalID || c.UserBID == principalID
}

// ConversationParticipant is the per-side state of a conversation
type ConversationParticipant struct {
	ConversationID string     `json:"conversation_id"`
	PrincipalID    string     `json:"principal_id"`
	Archived       bool       `json:"archived"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
}

// Message represents a chat message
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	ReceiverID     string     `json:"receiver_id"`
	Content        string     `json:"content"`
	Read           bool       `json:"read"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Like is a directed interest edge, unique per ordered pair
type Like struct {
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Block is a directed block edge; a block in either direction suppresses
// all interaction between the two principals.
type Block struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationKind enumerates notification payload types
type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationMatch   NotificationKind = "match"
	NotificationMessage NotificationKind = "message"
)

// Notification is an output artifact polled by clients
type Notification struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Kind      NotificationKind `json:"kind"`
	ActorID   string           `json:"actor_id"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConversationSummary is a listing row: the participant view joined to the
// counterpart and the most recent message.
type ConversationSummary struct {
	Conversation Conversation `json:"conversation"`
	Other        Principal    `json:"other"`
	LastMessage  *Message     `json:"last_message,omitempty"`
	UnreadCount  int          `json:"unread_count"`
}
