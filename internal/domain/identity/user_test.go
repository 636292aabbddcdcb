package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{" CUSTOMER ", RoleCustomer},
		{"", RoleCustomer},
		{"SUPERUSER", RoleCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestPortal_Admit(t *testing.T) {
	t.Run("customer portal admits customers", func(t *testing.T) {
		assert.NoError(t, PortalCustomer.Admit(RoleCustomer))
	})

	t.Run("customer portal rejects admins", func(t *testing.T) {
		err := PortalCustomer.Admit(RoleAdmin)
		assert.True(t, errors.Is(err, ErrAdminWrongPortal))
		assert.Equal(t, "Admin accounts should use the admin login portal", err.Error())
	})

	t.Run("admin portal admits admins", func(t *testing.T) {
		assert.NoError(t, PortalAdmin.Admit(RoleAdmin))
	})

	t.Run("admin portal rejects customers", func(t *testing.T) {
		err := PortalAdmin.Admit(RoleCustomer)
		assert.True(t, errors.Is(err, ErrAdminRequired))
		assert.Equal(t, "Access denied. Admin credentials required.", err.Error())
	})
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Asha", User{FirstName: "Asha", Email: "a@x.com"}.DisplayName())
	assert.Equal(t, "a@x.com", User{Email: "a@x.com"}.DisplayName())
}

func TestRole_HomePath(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.HomePath())
	assert.Equal(t, "/dashboard", RoleCustomer.HomePath())
}
