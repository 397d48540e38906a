package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gapindang/rapor-api/database"
)

// MakeHTTPHandleFunc adapts a store-taking handler into a fiber handler
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return handler(c, store)
	}
}
