package messaging

import "time"

// ContactSummary is one row of a user's inbox list: the partner plus a
// preview of the most recent exchange. It is derived from the message
// log on demand and never stored.
type ContactSummary struct {
	PartnerID     string         `json:"id"`
	Username      string         `json:"username"`
	LastMessage   string         `json:"last_message"`
	LastTimestamp time.Time      `json:"last_timestamp"`
	LastSenderID  string         `json:"last_sender_id"`
	LastStatus    DeliveryStatus `json:"last_status"`
	UnreadCount   int            `json:"unread_count"`
}
