package handler

import (
	"errors"

	"github.com/GustaavooC/mooda-sub000/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errNoTenantScope = errors.New("no tenant scope in session")

// tenantIDFromContext extracts the tenant scope set by the auth middleware
func tenantIDFromContext(c echo.Context) (uuid.UUID, error) {
	raw, ok := c.Get(middleware.ContextTenantID).(string)
	if !ok || raw == "" {
		return uuid.Nil, errNoTenantScope
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errNoTenantScope
	}
	return id, nil
}
