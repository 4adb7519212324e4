package handler

import (
	"errors"

	"go-eol-dashboard/internal/filter"
	"go-eol-dashboard/internal/phase"
	"go-eol-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.Get(c.Params("code"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(c.Params("code"), &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("code")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// SearchRequest carries ad-hoc filter groups for the product search.
type SearchRequest struct {
	Groups     []filter.Group `json:"groups"`
	GroupLogic filter.Logic   `json:"group_logic"`
}

// SearchProducts evaluates filter groups against all stored products.
// POST /api/v1/products/search
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.GroupLogic == "" {
		req.GroupLogic = filter.LogicAnd
	}

	products, err := h.service.Search(req.Groups, req.GroupLogic)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"count": len(products), "data": products})
}

// Webhook receives partial product updates from external systems.
// POST /api/v1/webhook/products
func (h *ProductHandler) Webhook(c *fiber.Ctx) error {
	var req service.WebhookUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.ProductCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "product_code is required"})
	}

	updated, err := h.service.ApplyWebhook(&req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product " + req.ProductCode + " not found"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product updated successfully", "data": updated})
}

// ImportSuppliers backfills supplier names from a code -> supplier mapping.
// POST /api/v1/suppliers/import
func (h *ProductHandler) ImportSuppliers(c *fiber.Ctx) error {
	var mapping map[string]string
	if err := c.BodyParser(&mapping); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(mapping) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Empty supplier mapping"})
	}

	result, err := h.service.ImportSuppliers(mapping)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "summary": result})
}

// GetHistory lists the recorded phase transitions of one product.
func (h *ProductHandler) GetHistory(c *fiber.Ctx) error {
	entries, err := h.service.History(c.Params("code"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(entries)
}

// GetPhases lists the phase metadata for UI legends.
func (h *ProductHandler) GetPhases(c *fiber.Ctx) error {
	return c.JSON(phase.All())
}
