// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hiroto333/references/internal/platform/ctxutil"
	"github.com/hiroto333/references/internal/platform/middleware"
	"github.com/hiroto333/references/internal/platform/sec"
)

// roleRequest runs a request with the given claims (nil for anonymous)
// through RequireRole and reports the resulting status code.
func roleRequest(required sec.UserRole, claims *sec.AuthClaims) int {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	guard := middleware.RequireRole(required)(next)

	request := httptest.NewRequest(http.MethodPost, "/admin/reap-guests", nil)
	if claims != nil {
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	}

	recorder := httptest.NewRecorder()
	guard.ServeHTTP(recorder, request)
	return recorder.Code
}

/*
TestRequireRole covers the three outcomes of the role guard: anonymous,
insufficient role, and sufficient role.
*/
func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, roleRequest(sec.RoleAdmin, nil))

	member := &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleMember)}
	assert.Equal(t, http.StatusForbidden, roleRequest(sec.RoleAdmin, member))

	admin := &sec.AuthClaims{UserID: "user-2", Role: string(sec.RoleAdmin)}
	assert.Equal(t, http.StatusOK, roleRequest(sec.RoleAdmin, admin))

	// An admin passes a member-level guard through the hierarchy.
	assert.Equal(t, http.StatusOK, roleRequest(sec.RoleMember, admin))
}
