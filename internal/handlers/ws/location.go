package ws

// MessageLocation is a coordinate report sent over the live connection. It
// runs the same reconciliation as the HTTP location endpoint and replies
// with the resulting membership set and boundary ETA.
type MessageLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (msg *MessageLocation) GetType() string {
	return "location"
}

func (msg *MessageLocation) Process(ctx *MessageContext) error {
	if ctx.SubscriptionService == nil {
		return SendError(ctx.Conn, "unavailable", "location updates not available", "")
	}

	result, err := ctx.SubscriptionService.UpdateUserLocation(ctx.UserID, msg.Latitude, msg.Longitude)
	if err != nil {
		return SendError(ctx.Conn, "location_failed", err.Error(), "")
	}

	return ctx.Conn.WriteJSON(map[string]interface{}{
		"type":   "location_result",
		"result": result,
	})
}
