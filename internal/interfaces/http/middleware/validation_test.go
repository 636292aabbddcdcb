package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCheckoutForm struct {
	Address string `form:"address" binding:"required,max=500"`
	Pincode string `form:"pincode" binding:"omitempty,pincode"`
	Method  string `form:"method" binding:"omitempty,oneof=UPI CARD COD"`
	Email   string `form:"email" binding:"omitempty,email"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type pin struct {
		Pincode string `form:"pincode" binding:"pincode"`
	}
	assert.NoError(t, v.Struct(pin{Pincode: "560001"}))
	assert.Error(t, v.Struct(pin{Pincode: "5600"}))
	assert.Error(t, v.Struct(pin{Pincode: "56000a"}))
}

func bindForm(t *testing.T, values url.Values) string {
	t.Helper()
	SetupValidator()
	gin.SetMode(gin.TestMode)

	var msg string
	router := gin.New()
	router.POST("/checkout", func(c *gin.Context) {
		var form testCheckoutForm
		if err := c.ShouldBind(&form); err != nil {
			msg = ValidationMessage(err)
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(httptest.NewRecorder(), req)
	return msg
}

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"valid", url.Values{"address": {"123 Main St"}, "pincode": {"560001"}}, ""},
		{"missing address", url.Values{"pincode": {"560001"}}, "Please enter your shipping address"},
		{"short pincode", url.Values{"address": {"x"}, "pincode": {"123"}}, "Please enter a 6-digit pincode"},
		{"unknown method", url.Values{"address": {"x"}, "method": {"CASH"}}, "Please choose a valid method"},
		{"bad email", url.Values{"address": {"x"}, "email": {"nope"}}, "Please enter a valid email address"},
		{"long address", url.Values{"address": {strings.Repeat("a", 501)}}, "The shipping address must be at most 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bindForm(t, tt.values))
		})
	}
}

func TestValidationMessage_NonValidationError(t *testing.T) {
	assert.Equal(t, "Please check the form and try again", ValidationMessage(assert.AnError))
}
