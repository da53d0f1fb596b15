package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/payment"
	"marketapi/internal/repository"
	"marketapi/internal/service"
	serviceMocks "marketapi/internal/service/mocks"
	"marketapi/internal/storage"
)

// withUser stands in for the auth middleware.
func withUser(id string, role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDLocalKey, id)
		c.Locals(middleware.RoleLocalKey, role)
		return c.Next()
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetExperience(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Get("/experiences/:id", GetExperience(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, service.Actor{}, id).Return(&model.Experience{ID: id, Title: "Sunset kayak"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Experience
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, "Sunset kayak", result.Title)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, service.Actor{}, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, service.Actor{}, id).Return(nil, errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestSearchExperiences(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Get("/experiences", SearchExperiences(mockSvc))

	t.Run("passes filters through", func(t *testing.T) {
		want := service.SearchQuery{
			CategorySlug:  "food",
			Location:      "lisbon",
			MinPriceCents: 1000,
			MaxPriceCents: 5000,
			Guests:        2,
			Sort:          model.SortPriceAsc,
			Limit:         5,
			Offset:        10,
		}
		mockSvc.On("Search", mock.Anything, want).Return(&service.ListResult[model.Experience]{
			Items: []model.Experience{{ID: "e-1"}},
			Total: 11,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/experiences?category=food&location=lisbon&min_price=1000&max_price=5000&guests=2&sort=price_asc&limit=5&offset=10", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Data  []model.Experience `json:"data"`
			Total int                `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 11, body.Total)
		assert.Len(t, body.Data, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid sort", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, service.SearchQuery{Sort: "cheapest"}).
			Return(nil, &service.ValidationError{Field: "sort", Message: "must be newest, price_asc, price_desc or rating"}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences?sort=cheapest", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Contains(t, res.Error.Message, "sort")
	})

	mockSvc.AssertExpectations(t)
}

func TestGetAvailability(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Get("/experiences/:id/availability", GetAvailability(mockSvc))
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		mockSvc.On("Availability", mock.Anything, id, day).
			Return(&service.Availability{ExperienceID: id, Date: "2026-04-01", Capacity: 8, Reserved: 3, Remaining: 5}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id+"/availability?date=2026-04-01", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var a service.Availability
		json.NewDecoder(resp.Body).Decode(&a)
		assert.Equal(t, 5, a.Remaining)
	})

	t.Run("bad date", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id+"/availability?date=04/01/2026", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateExperience(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Post("/host/experiences", withUser("host-1", model.RoleHost), CreateExperience(mockSvc))

	t.Run("created", func(t *testing.T) {
		in := service.ExperienceInput{
			Title:           "Street food walk",
			Location:        "Porto",
			PriceCents:      4500,
			DurationMinutes: 180,
			MinGuests:       1,
			MaxGuests:       8,
			Highlights:      []string{"tasting"},
		}
		mockSvc.On("Create", mock.Anything, "host-1", in).Return(&model.Experience{ID: "e-1", Status: model.ExperienceDraft}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/host/experiences", fiber.Map{
			"title":            "Street food walk",
			"location":         "Porto",
			"price_cents":      4500,
			"duration_minutes": 180,
			"min_guests":       1,
			"max_guests":       8,
			"highlights":       []string{"tasting"},
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/host/experiences", fiber.Map{
			"location": "Porto", "price_cents": 100, "duration_minutes": 60, "min_guests": 1, "max_guests": 2,
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Equal(t, "title is required", res.Error.Message)
	})

	t.Run("currency must be letters", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/host/experiences", fiber.Map{
			"title": "Walk", "location": "Porto", "price_cents": 100, "currency": "1$2",
			"duration_minutes": 60, "min_guests": 1, "max_guests": 2,
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "currency is invalid", decodeError(t, resp).Error.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/host/experiences", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestGetExperienceImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Get("/experiences/:id/images/:index", GetExperienceImage(mockSvc))
	id := uuid.New().String()

	t.Run("streams the photo", func(t *testing.T) {
		mockSvc.On("Image", mock.Anything, service.Actor{}, id, 0).
			Return(io.NopCloser(strings.NewReader("jpeg-bytes")),
				storage.ObjectInfo{ContentType: "image/jpeg", Size: 10, ETag: "abc"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id+"/images/0", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
		assert.Equal(t, `"abc"`, resp.Header.Get("ETag"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "jpeg-bytes", string(body))
	})

	t.Run("missing photo", func(t *testing.T) {
		mockSvc.On("Image", mock.Anything, service.Actor{}, id, 4).
			Return(nil, storage.ObjectInfo{}, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id+"/images/4", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad index", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id+"/images/first", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestAddExperienceImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Post("/host/experiences/:id/images", withUser("host-1", model.RoleHost), AddExperienceImage(mockSvc))
	id := uuid.New().String()
	host := service.Actor{ID: "host-1", Role: model.RoleHost}

	upload := func(contentType string) *http.Request {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="photo.png"`}
		h["Content-Type"] = []string{contentType}
		part, _ := writer.CreatePart(h)
		part.Write([]byte("png"))
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/host/experiences/"+id+"/images", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("AddImage", mock.Anything, host, id, mock.Anything, "image/png", int64(3)).
			Return(&model.Experience{ID: id, ImageURLs: []string{"https://cdn/x.png"}}, nil).Once()

		resp, _ := app.Test(upload("image/png"))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("unsupported type", func(t *testing.T) {
		mockSvc.On("AddImage", mock.Anything, host, id, mock.Anything, "text/plain", int64(3)).
			Return(nil, &service.ValidationError{Field: "file", Message: "only jpeg, png and webp images are accepted"}).Once()

		resp, _ := app.Test(upload("text/plain"))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("file required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/host/experiences/"+id+"/images", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestRemoveExperienceImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	app := fiber.New()
	app.Delete("/host/experiences/:id/images/:index", withUser("host-1", model.RoleHost), RemoveExperienceImage(mockSvc))
	id := uuid.New().String()

	mockSvc.On("RemoveImage", mock.Anything, service.Actor{ID: "host-1", Role: model.RoleHost}, id, 2).
		Return(&model.Experience{ID: id}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/host/experiences/"+id+"/images/2", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/host/experiences/"+id+"/images/x", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestCreateBooking(t *testing.T) {
	expID := uuid.New().String()
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	body := fiber.Map{"experience_id": expID, "date": "2026-04-02", "guests": 2, "message": "Vegetarian"}

	tests := []struct {
		name       string
		body       fiber.Map
		header     string
		setupMocks func(m *serviceMocks.MockBookingService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: body,
			setupMocks: func(m *serviceMocks.MockBookingService) {
				m.On("Create", mock.Anything, "guest-1", service.BookingRequest{
					ExperienceID: expID, Date: day, Guests: 2, Message: "Vegetarian",
				}).Return(&service.Checkout{Booking: &model.Booking{ID: "b-1", Status: model.BookingPending}, ClientSecret: "pi_secret"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "idempotency key header",
			body:   body,
			header: "retry-42",
			setupMocks: func(m *serviceMocks.MockBookingService) {
				m.On("Create", mock.Anything, "guest-1", service.BookingRequest{
					ExperienceID: expID, Date: day, Guests: 2, Message: "Vegetarian", IdempotencyKey: "retry-42",
				}).Return(&service.Checkout{Booking: &model.Booking{ID: "b-1"}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "oversized idempotency key header",
			body:       body,
			header:     strings.Repeat("k", 101),
			setupMocks: func(m *serviceMocks.MockBookingService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:   "body key wins over header",
			body:   fiber.Map{"experience_id": expID, "date": "2026-04-02", "guests": 2, "idempotency_key": "from-body"},
			header: "from-header",
			setupMocks: func(m *serviceMocks.MockBookingService) {
				m.On("Create", mock.Anything, "guest-1", service.BookingRequest{
					ExperienceID: expID, Date: day, Guests: 2, IdempotencyKey: "from-body",
				}).Return(&service.Checkout{Booking: &model.Booking{ID: "b-1"}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "sold out",
			body: body,
			setupMocks: func(m *serviceMocks.MockBookingService) {
				m.On("Create", mock.Anything, "guest-1", mock.Anything).Return(nil, service.ErrCapacityExceeded)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "CAPACITY_EXCEEDED",
		},
		{
			name: "card declined",
			body: body,
			setupMocks: func(m *serviceMocks.MockBookingService) {
				m.On("Create", mock.Anything, "guest-1", mock.Anything).
					Return(nil, &service.PaymentError{Op: "authorize", Err: errors.New("card_declined")})
			},
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "PAYMENT_FAILED",
		},
		{
			name:       "bad date",
			body:       fiber.Map{"experience_id": expID, "date": "tomorrow", "guests": 2},
			setupMocks: func(m *serviceMocks.MockBookingService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "experience id not a uuid",
			body:       fiber.Map{"experience_id": "abc", "date": "2026-04-02", "guests": 2},
			setupMocks: func(m *serviceMocks.MockBookingService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockBookingService)
			tt.setupMocks(mockSvc)
			app := fiber.New()
			app.Post("/bookings", withUser("guest-1", model.RoleGuest), CreateBooking(mockSvc))

			req := jsonRequest(http.MethodPost, "/bookings", tt.body)
			if tt.header != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestCancelBooking(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookingService)
	app := fiber.New()
	app.Post("/bookings/:id/cancel", withUser("guest-1", model.RoleGuest), CancelBooking(mockSvc))
	guest := service.Actor{ID: "guest-1", Role: model.RoleGuest}

	t.Run("with reason", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Cancel", mock.Anything, guest, id, "plans changed").
			Return(&model.Booking{ID: id, Status: model.BookingCancelled, RefundCents: 5000}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/bookings/"+id+"/cancel", fiber.Map{"reason": "plans changed"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("empty body", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Cancel", mock.Anything, guest, id, "").Return(&model.Booking{ID: id}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+id+"/cancel", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("already completed", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Cancel", mock.Anything, guest, id, "").Return(nil, service.ErrInvalidTransition).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+id+"/cancel", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Error.Code)
	})

	t.Run("not a participant", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Cancel", mock.Anything, guest, id, "").Return(nil, service.ErrForbidden).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+id+"/cancel", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestHostBookingDecisions(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookingService)
	app := fiber.New()
	app.Use(withUser("host-1", model.RoleHost))
	app.Post("/host/bookings/:id/approve", ApproveBooking(mockSvc))
	app.Post("/host/bookings/:id/decline", DeclineBooking(mockSvc))
	app.Get("/host/bookings", ListHostBookings(mockSvc))
	host := service.Actor{ID: "host-1", Role: model.RoleHost}

	t.Run("approve", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Approve", mock.Anything, host, id).Return(&model.Booking{ID: id, Status: model.BookingConfirmed}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/host/bookings/"+id+"/approve", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var b model.Booking
		json.NewDecoder(resp.Body).Decode(&b)
		assert.Equal(t, model.BookingConfirmed, b.Status)
	})

	t.Run("approve capture failed", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Approve", mock.Anything, host, id).
			Return(nil, &service.PaymentError{Op: "capture", Err: errors.New("expired")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/host/bookings/"+id+"/approve", nil))

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})

	t.Run("decline", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Decline", mock.Anything, host, id, "fully booked").
			Return(&model.Booking{ID: id, Status: model.BookingCancelled}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/host/bookings/"+id+"/decline", fiber.Map{"reason": "fully booked"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list by status", func(t *testing.T) {
		mockSvc.On("ListForHost", mock.Anything, "host-1", model.BookingPendingHostApproval, 0, 0).
			Return(&service.ListResult[model.Booking]{Items: []model.Booking{{ID: "b-1"}}, Total: 1}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/host/bookings?status=pending_host_approval", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestListAllBookings(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookingService)
	app := fiber.New()
	app.Get("/admin/bookings", ListAllBookings(mockSvc))

	mockSvc.On("List", mock.Anything, repository.BookingFilter{HostID: "h-1", Status: model.BookingPaidOut}, 50, 0).
		Return(&service.ListResult[model.Booking]{}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/bookings?host_id=h-1&status=paid_out&limit=50", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestCreateReview(t *testing.T) {
	mockSvc := new(serviceMocks.MockReviewService)
	app := fiber.New()
	app.Post("/bookings/:id/review", withUser("guest-1", model.RoleGuest), CreateReview(mockSvc))

	t.Run("created", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Create", mock.Anything, "guest-1", id, 5, "Loved it").Return(&model.Review{ID: "r-1", Rating: 5}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/bookings/"+id+"/review", fiber.Map{"rating": 5, "comment": "Loved it"}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("rating out of range", func(t *testing.T) {
		id := uuid.New().String()
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/bookings/"+id+"/review", fiber.Map{"rating": 6}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "rating must be at most 5", decodeError(t, resp).Error.Message)
	})

	t.Run("already reviewed", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Create", mock.Anything, "guest-1", id, 4, "").Return(nil, service.ErrAlreadyReviewed).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/bookings/"+id+"/review", fiber.Map{"rating": 4}))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "ALREADY_REVIEWED", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestStartConversation(t *testing.T) {
	expID := uuid.New().String()
	bookingID := uuid.New().String()
	hostID := uuid.New().String()

	tests := []struct {
		name       string
		body       fiber.Map
		want       service.ConversationRequest
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "from an experience",
			body:       fiber.Map{"experience_id": expID},
			want:       service.ConversationRequest{ExperienceID: expID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "from a booking",
			body:       fiber.Map{"booking_id": bookingID},
			want:       service.ConversationRequest{BookingID: bookingID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "with a host",
			body:       fiber.Map{"host_id": hostID},
			want:       service.ConversationRequest{HostID: hostID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed host id",
			body:       fiber.Map{"host_id": "not-a-uuid"},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "host_id is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockMessagingService)
			app := fiber.New()
			app.Post("/conversations", withUser("guest-1", model.RoleGuest), StartConversation(mockSvc))
			if tt.wantStatus == http.StatusOK {
				mockSvc.On("StartConversation", mock.Anything, "guest-1", tt.want).
					Return(&model.Conversation{ID: "c-1"}, nil).Once()
			}

			resp, _ := app.Test(jsonRequest(http.MethodPost, "/conversations", tt.body))

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantMsg != "" {
				res := decodeError(t, resp)
				assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
				assert.Equal(t, tt.wantMsg, res.Error.Message)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestSendMessage(t *testing.T) {
	mockSvc := new(serviceMocks.MockMessagingService)
	app := fiber.New()
	app.Post("/conversations/:id/messages", withUser("guest-1", model.RoleGuest), SendMessage(mockSvc))
	id := uuid.New().String()

	mockSvc.On("Send", mock.Anything, "guest-1", id, "Is parking available?").
		Return(&model.Message{ID: "m-1", ConversationID: id}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/conversations/"+id+"/messages", fiber.Map{"body": "Is parking available?"}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = app.Test(jsonRequest(http.MethodPost, "/conversations/"+id+"/messages", fiber.Map{"body": ""}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestUpdateMe(t *testing.T) {
	mockSvc := new(serviceMocks.MockProfileService)
	app := fiber.New()
	app.Patch("/me", withUser("u-1", model.RoleGuest), UpdateMe(mockSvc))

	bio := "Trail runner"
	mockSvc.On("UpdateMe", mock.Anything, "u-1", service.ProfileUpdate{Bio: &bio}).
		Return(&model.Profile{ID: "u-1", Bio: bio}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPatch, "/me", fiber.Map{"bio": bio}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(jsonRequest(http.MethodPatch, "/me", fiber.Map{"full_name": strings.Repeat("a", 101)}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestStartPayoutOnboarding(t *testing.T) {
	mockSvc := new(serviceMocks.MockProfileService)
	app := fiber.New()
	app.Post("/me/payouts/onboard", withUser("host-1", model.RoleHost), StartPayoutOnboarding(mockSvc))

	mockSvc.On("StartPayoutOnboarding", mock.Anything, "host-1").Return("https://connect.example/onboard", nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/me/payouts/onboard", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "https://connect.example/onboard", body["url"])
	mockSvc.AssertExpectations(t)
}

func TestUpdateSettings(t *testing.T) {
	mockSvc := new(serviceMocks.MockSettingsService)
	app := fiber.New()
	app.Patch("/admin/settings", UpdateSettings(mockSvc))

	t.Run("numbers and strings", func(t *testing.T) {
		want := map[string]string{"platform_fee_percent": "12", "default_currency": "eur"}
		updated := model.DefaultSettings()
		updated.PlatformFeePercent = 12
		updated.DefaultCurrency = "eur"
		mockSvc.On("Update", mock.Anything, want).Return(updated, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/settings", fiber.Map{
			"platform_fee_percent": 12,
			"default_currency":     "eur",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var st model.Settings
		json.NewDecoder(resp.Body).Decode(&st)
		assert.Equal(t, 12, st.PlatformFeePercent)
	})

	t.Run("out of range", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, map[string]string{"platform_fee_percent": "90"}).
			Return(model.Settings{}, &service.ValidationError{Field: "platform_fee_percent", Message: "must be between 0 and 50"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/settings", fiber.Map{"platform_fee_percent": 90}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unsupported value type", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/settings", fiber.Map{"platform_fee_percent": true}))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestSetUserRole(t *testing.T) {
	mockSvc := new(serviceMocks.MockDashboardService)
	app := fiber.New()
	app.Patch("/admin/users/:id/role", withUser("admin-1", model.RoleAdmin), SetUserRole(mockSvc))
	id := uuid.New().String()

	mockSvc.On("SetUserRole", mock.Anything, "admin-1", id, model.RoleHost).Return(nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/users/"+id+"/role", fiber.Map{"role": "host"}))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = app.Test(jsonRequest(http.MethodPatch, "/admin/users/"+id+"/role", fiber.Map{"role": "owner"}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestStripeWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.amount_capturable_updated"}`)

	tests := []struct {
		name       string
		result     string
		err        error
		wantStatus int
	}{
		{"processed", service.WebhookProcessed, nil, http.StatusOK},
		{"duplicate", service.WebhookDuplicate, nil, http.StatusOK},
		{"bad signature", "", payment.ErrInvalidSignature, http.StatusBadRequest},
		{"processing failed", "", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockWebhookService)
			mockSvc.On("Handle", mock.Anything, payload, "t=1,v1=abc").Return(tt.result, tt.err).Once()
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
			app.Post("/webhooks/stripe", StripeWebhook(mockSvc))

			req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
			req.Header.Set(StripeSignatureHeader, "t=1,v1=abc")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				json.NewDecoder(resp.Body).Decode(&body)
				assert.Equal(t, tt.result, body["result"])
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
	app.Use(middleware.RequestID())
	app.Get("/limited", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "slow down")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fmt.Errorf("query: %w", errors.New("connection reset"))
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(middleware.RequestIDHeader, "rid-1")
	resp, _ = app.Test(req)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	res := decodeError(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
	assert.Equal(t, "internal server error", res.Error.Message)
	assert.Equal(t, "rid-1", res.RequestID)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(zerolog.Nop()),
	})

	profiles := new(serviceMocks.MockProfileService)
	profiles.On("Ensure", mock.Anything, "u-1", "u-1@example.com").Return(&model.Profile{ID: "u-1", Role: model.RoleGuest}, nil)
	auth := middleware.NewAuthenticator("secret", "", profiles, zerolog.Nop())

	RegisterRoutes(app, nil, Services{
		Profiles:      profiles,
		Categories:    new(serviceMocks.MockCategoryService),
		Experiences:   new(serviceMocks.MockExperienceService),
		Bookings:      new(serviceMocks.MockBookingService),
		Reviews:       new(serviceMocks.MockReviewService),
		Messaging:     new(serviceMocks.MockMessagingService),
		Notifications: new(serviceMocks.MockNotificationService),
		Settings:      new(serviceMocks.MockSettingsService),
		Dashboard:     new(serviceMocks.MockDashboardService),
		Webhooks:      new(serviceMocks.MockWebhookService),
	}, auth)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email: "u-1@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("authentication required", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/bookings", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("guest cannot reach admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("guest cannot reach host routes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/host/dashboard", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
