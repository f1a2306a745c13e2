package ws

// MessagePing is an application-level keepalive. Clients behind proxies that
// swallow protocol-level ping frames use it to keep the connection warm.
type MessagePing struct{}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Conn.WriteJSON(map[string]string{
		"type": "pong",
	})
}

// MessagePong acknowledges a server ping. Nothing to do server-side; the
// transport pong handler already tracks liveness.
type MessagePong struct{}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	return nil
}
