package ws

// MessageSync asks the server to flush any queued events for this user.
type MessageSync struct {
}

func (msg *MessageSync) GetType() string {
	return "sync"
}

func (msg *MessageSync) Process(ctx *MessageContext) error {
	return ctx.Hub.FlushPendingNotifications(ctx.UserID)
}
