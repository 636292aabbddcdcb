package notification

import (
	"cmp"
	"slices"

	"github.com/retail/storefront/internal/domain/shared"
)

// Channel is the delivery type of a notification
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Broadcast addressing used for store-wide announcements
const (
	BroadcastUserID    int64 = 0
	BroadcastRecipient       = "all@users.com"
)

// Notification is a message addressed to a user
type Notification struct {
	ID        int64            `json:"id,omitempty"`
	UserID    int64            `json:"userId"`
	Type      Channel          `json:"type"`
	Recipient string           `json:"recipient"`
	Subject   string           `json:"subject"`
	Message   string           `json:"message"`
	SentAt    shared.Timestamp `json:"sentAt"`
}

// NewProductLaunch builds the broadcast announcing a newly created product
func NewProductLaunch(productName string) Notification {
	return Notification{
		UserID:    BroadcastUserID,
		Type:      ChannelEmail,
		Recipient: BroadcastRecipient,
		Subject:   "New Product Launched!",
		Message:   "Check out our new product: " + productName,
	}
}

// NewestFirst returns a copy sorted by send time, newest first
func NewestFirst(ns []Notification) []Notification {
	out := slices.Clone(ns)
	slices.SortStableFunc(out, func(a, b Notification) int {
		if c := b.SentAt.Compare(a.SentAt.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
