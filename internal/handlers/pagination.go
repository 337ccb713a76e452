package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/HealthQuestBack/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = parsePositiveInt(c.Query("page"), 1)
	limit = parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// pageNewestFirst returns one page of items, most recent entry first.
func pageNewestFirst[T any](items []T, page, limit int) []T {
	total := len(items)
	// Compare page numbers first; (page-1)*limit overflows for huge pages.
	if page < 1 || limit < 1 || page-1 >= (total+limit-1)/limit {
		return []T{}
	}
	start := (page - 1) * limit
	end := min(start+limit, total)

	out := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, items[total-1-i])
	}
	return out
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
