package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler upgrades GET /ws/lessons/:lessonId and subscribes the connection
// to that lesson's event stream.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		lessonID, err := uuid.Parse(c.Params("lessonId"))
		if err != nil {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:      hub,
			conn:     c,
			lessonID: lessonID,
			send:     make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
