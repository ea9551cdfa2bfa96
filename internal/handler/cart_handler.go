package handler

import (
	"errors"

	"go-pos-sync/internal/service"
	"go-pos-sync/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

// Helper to pull the operator ID set by the auth middleware
func getOperatorID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("operator_id")
	if raw == nil {
		return uuid.Nil, errors.New("no operator in context")
	}
	return uuid.Parse(raw.(string))
}

// AddItemRequest represents the add-to-cart request body
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
}

// SetQuantityRequest represents the set-quantity request body
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the operator's current draft sale with items
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sale, err := h.service.GetCart(operatorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if sale == nil {
		return c.JSON(fiber.Map{"sale": nil})
	}
	return c.JSON(fiber.Map{"sale": sale})
}

// AddItem adds one unit of a product to the operator's cart, creating the
// draft sale if none exists
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "product_id is required"})
	}

	sale, err := h.service.AddProduct(operatorID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Item added", "sale": sale})
}

// SetQuantity updates (or deletes, at zero) a line item's quantity
// PUT /api/v1/cart/items/:productId
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	draft, err := h.service.GetCart(operatorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if draft == nil {
		// No draft sale: silent no-op
		return c.JSON(fiber.Map{"sale": nil})
	}

	sale, err := h.service.SetQuantity(draft.ID, productID, req.Quantity)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Quantity updated", "sale": sale})
}

// RemoveItem deletes a line item from the cart
// DELETE /api/v1/cart/items/:productId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	draft, err := h.service.GetCart(operatorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if draft == nil {
		return c.JSON(fiber.Map{"sale": nil})
	}

	sale, err := h.service.RemoveItem(draft.ID, productID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Item removed", "sale": sale})
}

// Clear deletes all line items and the draft sale header itself
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	draft, err := h.service.GetCart(operatorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if draft == nil {
		return c.JSON(fiber.Map{"message": "Cart already empty"})
	}

	if err := h.service.ClearCart(draft.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// Checkout completes the operator's draft sale. Missing preconditions
// (no draft, empty cart) yield a 200 no-op with no sale id.
// POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	draft, err := h.service.GetCart(operatorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if draft == nil {
		return c.JSON(fiber.Map{"sale_id": nil, "message": "Nothing to check out"})
	}

	saleID, err := h.service.CompleteSale(operatorID, draft.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if saleID == uuid.Nil {
		return c.JSON(fiber.Map{"sale_id": nil, "message": "Nothing to check out"})
	}

	return c.JSON(fiber.Map{"sale_id": saleID, "message": "Sale completed"})
}
