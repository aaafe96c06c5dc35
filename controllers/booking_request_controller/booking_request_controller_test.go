package booking_request_controller

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mentorloop/api/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("LOG_FILE", filepath.Join(os.TempDir(), "mentorloop-test.log"))
	logger.InitLoggers()
	os.Exit(m.Run())
}

func testRouter(userID *uuid.UUID) *gin.Engine {
	bc := NewBookingRequestController(nil)

	r := gin.New()
	auth := func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", *userID)
		}
		c.Next()
	}
	r.POST("/booking-requests", auth, bc.CreateBookingRequest)
	r.PATCH("/booking-requests/:id/respond", auth, bc.RespondToBookingRequest)
	r.DELETE("/booking-requests/:id", auth, bc.DeleteBookingRequest)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingRequestUnauthenticated(t *testing.T) {
	r := testRouter(nil)
	w := doJSON(r, "POST", "/booking-requests", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User not authenticated")
}

func TestCreateBookingRequestValidation(t *testing.T) {
	uid := uuid.New()
	r := testRouter(&uid)

	t.Run("MissingFields", func(t *testing.T) {
		w := doJSON(r, "POST", "/booking-requests", `{"mentor_id":"`+uuid.NewString()+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MentorIDNotUUID", func(t *testing.T) {
		body := `{"mentor_id":"bogus","requested_date":"2030-01-10","start_time":"09:00","end_time":"10:00"}`
		w := doJSON(r, "POST", "/booking-requests", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "mentor_id must be a valid UUID")
	})

	t.Run("DateInPast", func(t *testing.T) {
		body := `{"mentor_id":"` + uuid.NewString() + `","requested_date":"2020-01-10","start_time":"09:00","end_time":"10:00"}`
		w := doJSON(r, "POST", "/booking-requests", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		body := `{"mentor_id":"` + uuid.NewString() + `","requested_date":"2030-01-10","start_time":"10:00","end_time":"09:00"}`
		w := doJSON(r, "POST", "/booking-requests", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DurationTooLong", func(t *testing.T) {
		body := `{"mentor_id":"` + uuid.NewString() + `","requested_date":"2030-01-10","start_time":"09:00","end_time":"13:01"}`
		w := doJSON(r, "POST", "/booking-requests", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadTimeFormat", func(t *testing.T) {
		body := `{"mentor_id":"` + uuid.NewString() + `","requested_date":"2030-01-10","start_time":"9am","end_time":"10:00"}`
		w := doJSON(r, "POST", "/booking-requests", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRespondValidation(t *testing.T) {
	uid := uuid.New()
	r := testRouter(&uid)
	path := "/booking-requests/" + uuid.NewString() + "/respond"

	t.Run("Unauthenticated", func(t *testing.T) {
		w := doJSON(testRouter(nil), "PATCH", path, `{"status":"approved"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("BadRequestID", func(t *testing.T) {
		w := doJSON(r, "PATCH", "/booking-requests/123/respond", `{"status":"approved"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request ID")
	})

	t.Run("InvalidAnswer", func(t *testing.T) {
		w := doJSON(r, "PATCH", path, `{"status":"maybe"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DeclineWithoutResponse", func(t *testing.T) {
		w := doJSON(r, "PATCH", path, `{"status":"declined"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "response")
	})

	// The legacy spelling must be treated as a decline, so it also
	// requires response text.
	t.Run("LegacyRejectedSpelling", func(t *testing.T) {
		w := doJSON(r, "PATCH", path, `{"status":"rejected"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "response")
	})
}

func TestDeleteBookingRequestBadID(t *testing.T) {
	uid := uuid.New()
	r := testRouter(&uid)
	w := doJSON(r, "DELETE", "/booking-requests/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request ID")
}
