package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userID, ok := c.Value("user_id").(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	role, _ := c.Value("user_role").(string)
	return role
}

// bindJSON binds the body and writes the error response itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error) {
	if fields, ok := middleware.FieldErrors(err); ok {
		response.ValidationError(c, fields)
		return
	}
	response.BadRequest(c, "Invalid request body")
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}

// parseDate reads an already validated YYYY-MM-DD value.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return parseDate(*s)
}
