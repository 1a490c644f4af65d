package notification

import (
	"context"
)

// Channel identifies a delivery channel
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelPush  Channel = "PUSH"
)

// Message is a channel-agnostic notification to a single recipient.
// Recipient is an address in the channel's own format (email address,
// phone number or device token).
type Message struct {
	Channel   Channel
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers a message over one channel. Delivery failures are
// reported to the caller, dispatch policy (retries, fan-out) lives above
// this interface.
type Notifier interface {
	// Channel returns the channel this notifier serves
	Channel() Channel

	// Send delivers the message
	Send(ctx context.Context, msg Message) error
}
