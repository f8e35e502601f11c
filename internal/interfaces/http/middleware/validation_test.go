package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

type testReceipt struct {
	Notes string     `json:"notes" binding:"max=5"`
	Lines []testLine `json:"lines" binding:"required,min=1,dive"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req testReceipt
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "valid input",
			body:           `{"lines":[{"item_id":"4b0e8c5e-2c4f-4f7e-9f6c-2f8b6a1d3e10","quantity":2}]}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing lines",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"lines"},
		},
		{
			name:           "nested fields use json names",
			body:           `{"notes":"far too long","lines":[{"item_id":"nope","quantity":0}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"notes", "lines[0].item_id", "lines[0].quantity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				return
			}

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)

			fields := make([]string, len(resp.Error.Details))
			for i, d := range resp.Error.Details {
				fields[i] = d.Field
			}
			assert.ElementsMatch(t, tt.expectedFields, fields)
		})
	}
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string   `validate:"required"`
		Min      string   `validate:"min=5"`
		MinInt   int      `validate:"min=1"`
		MinSlice []string `validate:"min=1"`
		Max      string   `validate:"max=3"`
		UUID     string   `validate:"uuid"`
		OneOf    string   `validate:"oneof=draft sent"`
	}

	err := validator.New().Struct(sample{
		Min:   "ab",
		Max:   "abcdef",
		UUID:  "bad",
		OneOf: "lost",
	})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"MinInt":   "Must be at least 1",
		"MinSlice": "Must contain at least 1 entries",
		"Max":      "Must be at most 3 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: draft sent",
	}

	for _, e := range err.(validator.ValidationErrors) {
		want, ok := expected[e.Field()]
		require.True(t, ok, "unexpected field %s", e.Field())
		assert.Equal(t, want, getValidationMessage(e), e.Field())
	}
}
