package handler

import (
	"context"
	"errors"

	"go-pos-sync/internal/sync"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	client *sync.Client
}

func NewSyncHandler(client *sync.Client) *SyncHandler {
	return &SyncHandler{client: client}
}

// GetStatus reports connectivity and upload/download activity flags
// GET /api/v1/sync/status
func (h *SyncHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.client.Status())
}

// Connect starts the background replication loop
// POST /api/v1/sync/connect
func (h *SyncHandler) Connect(c *fiber.Ctx) error {
	// The loop must outlive this request, so it gets its own context
	if err := h.client.Connect(context.Background()); err != nil {
		if errors.Is(err, sync.ErrOffline) {
			return c.Status(409).JSON(fiber.Map{"error": "No remote backend configured"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Sync connected"})
}

// Disconnect stops the replication loop
// POST /api/v1/sync/disconnect
func (h *SyncHandler) Disconnect(c *fiber.Ctx) error {
	h.client.Disconnect()
	return c.JSON(fiber.Map{"message": "Sync disconnected"})
}
