package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names in messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// The request helpers below write the error response themselves and report ok=false;
// handlers then return nil.

// bind decodes the JSON body into dst and validates it. An empty body leaves dst
// at its zero value so optional-only payloads may be omitted.
func bind(c *fiber.Ctx, dst any) bool {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			_ = writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		_ = writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// pathID reads a UUID path parameter, writing INVALID_ID when it is malformed.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

func queryInt(c *fiber.Ctx, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid "+key)
		return 0, false
	}
	return n, true
}

// pageQuery holds limit & offset. A zero limit lets the service apply its default.
type pageQuery struct {
	limit, offset int
}

func page(c *fiber.Ctx) (pageQuery, bool) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return pageQuery{}, false
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return pageQuery{}, false
	}
	return pageQuery{limit: limit, offset: offset}, true
}

// actor builds the service caller from the locals set by the auth middleware.
func actor(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: middleware.UserID(c), Role: middleware.Role(c)}
}

func bookingStatus(c *fiber.Ctx) model.BookingStatus {
	return model.BookingStatus(c.Query("status"))
}

type upload struct {
	file        multipart.File
	contentType string
	size        int64
}

// formImage opens the multipart "file" field. Callers close the file.
func formImage(c *fiber.Ctx) (*upload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		return nil, false
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &upload{file: f, contentType: ct, size: fh.Size}, true
}

// list wraps a plain slice in the list envelope.
func list[T any](items []T) fiber.Map {
	if items == nil {
		items = []T{}
	}
	return fiber.Map{"data": items, "total": len(items)}
}
