package dto

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/witness-archive/internal/analytics"
	"github.com/jsamuelsen/witness-archive/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestNewErrorResponse tests creating a basic error response.
func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		want    *ErrorResponse
	}{
		{
			name:    "basic error response",
			code:    ErrorCodeNotFound,
			message: "resource not found",
			want: &ErrorResponse{
				Error: ErrorDetail{
					Code:    ErrorCodeNotFound,
					Message: "resource not found",
				},
			},
		},
		{
			name:    "dataset load error response",
			code:    ErrorCodeDatasetLoad,
			message: "dataset missing",
			want: &ErrorResponse{
				Error: ErrorDetail{
					Code:    ErrorCodeDatasetLoad,
					Message: "dataset missing",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewErrorResponse(tt.code, tt.message)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNewErrorResponseWithDetails tests creating an error response with details.
func TestNewErrorResponseWithDetails(t *testing.T) {
	got := NewErrorResponseWithDetails(ErrorCodeValidation, "validation failed", map[string]string{
		"from": "must be a date in YYYY-MM-DD format",
	})

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, "validation failed", got.Error.Message)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", got.Error.Details["from"])
}

// TestWithTraceID tests adding trace ID to error response.
func TestWithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "boom").WithTraceID("abc123")
	assert.Equal(t, "abc123", resp.TraceID)
}

// TestHTTPStatusFromCode tests the code-to-status mapping.
func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDatasetLoad, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

// TestGetTraceID tests extracting trace ID from gin context.
func TestGetTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	// No span recording means no trace ID.
	assert.Empty(t, GetTraceID(c))
}

// TestHandleError tests domain error to HTTP response mapping.
func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        domain.NewNotFoundError("testimony", "t-42"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:       "validation",
			err:        domain.NewValidationError("id", "cannot be empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeValidation,
		},
		{
			name:       "dataset load",
			err:        domain.NewLoadError("data/testimonies.csv", "missing required column(s)", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeDatasetLoad,
		},
		{
			name:       "unavailable",
			err:        domain.NewUnavailableError("archive-mirror", "circuit open"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeUnavailable,
		},
		{
			name:       "unknown error is masked",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)

			if tt.wantCode == ErrorCodeInternal {
				// Internal details must not leak to the client.
				assert.NotContains(t, w.Body.String(), "database exploded")
			}
		})
	}
}

// TestHandleError_ValidationFieldDetails tests field extraction for validation errors.
func TestHandleError_ValidationFieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, domain.NewValidationError("id", "cannot be empty"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"cannot be empty"`)
}

// TestPaginationGetLimit tests limit defaults and clamping.
func TestPaginationGetLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, DefaultLimit},
		{"negative uses default", -5, DefaultLimit},
		{"in range", 50, 50},
		{"above max is clamped", 500, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PaginationRequest{Limit: tt.limit}
			assert.Equal(t, tt.want, p.GetLimit())
		})
	}
}

// TestCursorRoundTrip tests cursor encode/decode symmetry.
func TestCursorRoundTrip(t *testing.T) {
	cursor := NewCursor("published_at", "2025-09-12", "t-3")

	encoded := EncodeCursor(cursor)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)
}

// TestDecodeCursor_Errors tests cursor decoding failure modes.
func TestDecodeCursor_Errors(t *testing.T) {
	t.Run("empty cursor", func(t *testing.T) {
		_, err := DecodeCursor("")
		assert.ErrorIs(t, err, ErrNoCursor)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := DecodeCursor("!!!not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("base64 but not json", func(t *testing.T) {
		bad := base64.URLEncoding.EncodeToString([]byte("not json"))
		_, err := DecodeCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}

// TestNewPaginatedResponse tests page trimming and next-cursor generation.
func TestNewPaginatedResponse(t *testing.T) {
	items := []string{"a", "b", "c"}

	t.Run("more pages available", func(t *testing.T) {
		// Pass limit+1 items to signal another page exists.
		resp := NewPaginatedResponse(items, 2, func(s string) *CursorData {
			return NewCursor("name", s, s)
		})

		assert.Len(t, resp.Items, 2)
		assert.True(t, resp.HasMore)
		assert.NotEmpty(t, resp.NextCursor)

		decoded, err := DecodeCursor(resp.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, "b", decoded.ID)
	})

	t.Run("last page", func(t *testing.T) {
		resp := NewPaginatedResponse(items, 5, nil)

		assert.Len(t, resp.Items, 3)
		assert.False(t, resp.HasMore)
		assert.Empty(t, resp.NextCursor)
	})

	t.Run("empty response", func(t *testing.T) {
		resp := EmptyPaginatedResponse[string]()

		assert.Empty(t, resp.Items)
		assert.False(t, resp.HasMore)
	})
}

// TestFilterRequest_Validation tests filter query validation rules.
func TestFilterRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     FilterRequest
		wantErr bool
	}{
		{"empty request is valid", FilterRequest{}, false},
		{"multi-select dimensions", FilterRequest{Emotions: []string{"fear", "grief"}}, false},
		{"url status original", FilterRequest{URLStatus: "original"}, false},
		{"url status all", FilterRequest{URLStatus: "all"}, false},
		{"bad url status", FilterRequest{URLStatus: "broken"}, true},
		{"valid dates", FilterRequest{From: "2025-09-01", To: "2025-09-30"}, false},
		{"bad date format", FilterRequest{From: "09/01/2025"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestFilterRequest_ToFilter tests conversion to the analytics filter.
func TestFilterRequest_ToFilter(t *testing.T) {
	req := FilterRequest{
		Emotions:  []string{"fear"},
		Themes:    []string{"raid", "separation"},
		URLStatus: "original",
		From:      "2025-09-01",
		To:        "2025-09-30",
	}

	f := req.ToFilter()

	assert.Equal(t, []string{"fear"}, f.Emotions)
	assert.Equal(t, []string{"raid", "separation"}, f.Themes)
	assert.Equal(t, analytics.URLFilterOriginal, f.URLStatus)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), f.From)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), f.To)
}

// TestFilterRequest_ToFilter_EmptyDates tests that unset dates stay zero.
func TestFilterRequest_ToFilter_EmptyDates(t *testing.T) {
	f := (&FilterRequest{}).ToFilter()

	assert.True(t, f.From.IsZero())
	assert.True(t, f.To.IsZero())
	assert.True(t, f.IsEmpty())
}

// TestBindQueryAndValidate tests binding filter params from a request.
func TestBindQueryAndValidate(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/?emotion=fear&emotion=anger&url_status=missing&from=2025-09-01&limit=10", nil)

	var req ListTestimoniesRequest
	err := BindQueryAndValidate(c, &req)

	require.NoError(t, err)
	assert.Equal(t, []string{"fear", "anger"}, req.Emotions)
	assert.Equal(t, "missing", req.URLStatus)
	assert.Equal(t, "2025-09-01", req.From)
	assert.Equal(t, 10, req.Limit)
}

// TestBindQueryAndValidate_Invalid tests binding rejects bad parameters.
func TestBindQueryAndValidate_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?url_status=sideways", nil)

	var req ListTestimoniesRequest
	err := BindQueryAndValidate(c, &req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

// TestToTestimonyResponse tests the domain-to-HTTP conversion.
func TestToTestimonyResponse(t *testing.T) {
	row := &domain.Testimony{
		ID:          "t-7",
		Title:       "Raid on the west side",
		Narrative:   "They came before dawn.",
		Emotion:     "fear",
		Theme:       "raid",
		Source:      "Tribune",
		PublishedAt: time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
		URL:         "https://example.org/article",
		URLStatus:   domain.URLStatusOriginal,
	}

	got := ToTestimonyResponse(row)

	assert.Equal(t, "t-7", got.ID)
	assert.Equal(t, "They came before dawn.", got.Narrative)
	assert.Equal(t, "2025-09-12", got.PublishedAt)
	assert.Equal(t, "original", got.URLStatus)
}

// TestToTestimonyResponse_UnknownTags tests the unknown-tag mapping.
func TestToTestimonyResponse_UnknownTags(t *testing.T) {
	row := &domain.Testimony{
		ID:          "t-8",
		Narrative:   "x",
		PublishedAt: time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
		URLStatus:   domain.URLStatusMissing,
	}

	got := ToTestimonyResponse(row)

	assert.Equal(t, domain.UnknownTag, got.Emotion)
	assert.Equal(t, domain.UnknownTag, got.Theme)
	assert.Empty(t, got.URL)
}

// TestNewChartResponse tests the chart envelope, including the empty state.
func TestNewChartResponse(t *testing.T) {
	t.Run("with chart", func(t *testing.T) {
		groups := []analytics.Group{{Key: "fear", Label: "fear", Count: 3}}
		chart := analytics.BuildBarChart("Emotion distribution", "Emotion", groups)

		resp := NewChartResponse(3, groups, chart)

		assert.Equal(t, 3, resp.Matches)
		assert.False(t, resp.Empty)
		require.NotNil(t, resp.Chart)
	})

	t.Run("no results", func(t *testing.T) {
		resp := NewChartResponse(0, nil, nil)

		assert.Equal(t, 0, resp.Matches)
		assert.True(t, resp.Empty)
		assert.Nil(t, resp.Chart)
	})
}
