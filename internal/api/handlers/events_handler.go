package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/forepost/api/internal/events"
)

const heartbeatInterval = 30 * time.Second

type EventsHandler struct {
	broker    *events.Broker
	heartbeat time.Duration
}

func NewEventsHandler(broker *events.Broker) *EventsHandler {
	return &EventsHandler{broker: broker, heartbeat: heartbeatInterval}
}

// Stream holds the connection open and forwards broker events as
// server-sent events.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	id, ch := h.broker.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.broker.Unsubscribe(id)
		h.streamLoop(w, ch)
	}))

	return nil
}

// streamLoop writes frames until the subscription closes or the client goes
// away. A heartbeat goes out only after a full idle interval without an
// event, so proxies keep quiet connections alive.
func (h *EventsHandler) streamLoop(w *bufio.Writer, ch <-chan []byte) {
	if !writeFrame(w, []byte(`{"type": "connected"}`)) {
		return
	}

	idle := time.NewTimer(h.heartbeat)
	defer idle.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !writeFrame(w, msg) {
				return
			}
		case <-idle.C:
			if !writeFrame(w, []byte(`{"type": "heartbeat"}`)) {
				return
			}
		}

		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(h.heartbeat)
	}
}

func writeFrame(w *bufio.Writer, payload []byte) bool {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return false
	}
	return w.Flush() == nil
}
