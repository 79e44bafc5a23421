package server

import (
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/orgboard/orgboard/internal/audit/domain"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMembersRequiresAuthButNotOwnership(t *testing.T) {
	fake := &fakeOrgService{members: []orgdomain.Member{{ID: snowflake.ID(1), UserSub: "user-2", Role: orgdomain.RoleMember}}}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodGet, "/api/organizations/12345/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Any authenticated caller may list; ownership is not consulted.
	w = doRequest(srv, http.MethodGet, "/api/organizations/12345/members", bearerFor(t, "user-2", "Bob"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-2")
}

func TestAddMemberCreated(t *testing.T) {
	fake := &fakeOrgService{member: &orgdomain.Member{ID: snowflake.ID(9), UserSub: "user-2", Role: orgdomain.RoleMember}}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodPost, "/api/organizations/12345/members", bearerFor(t, "user-1", "Alice"), map[string]string{
		"user_sub":  "user-2",
		"user_name": "Bob",
		"role":      orgdomain.RoleMember,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "12345", fake.lastOrgID)
	assert.Equal(t, "user-1", fake.lastCaller.Sub)
}

func TestAddMemberDuplicateIsConflict(t *testing.T) {
	fake := &fakeOrgService{err: orgdomain.ErrMemberExists}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodPost, "/api/organizations/12345/members", bearerFor(t, "user-1", "Alice"), map[string]string{
		"user_sub":  "user-2",
		"user_name": "Bob",
		"role":      orgdomain.RoleMember,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	payload := decodeProblem(t, w)
	assert.Equal(t, "Conflict", payload.Title)
}

func TestAddMemberInvalidRole(t *testing.T) {
	fake := &fakeOrgService{err: orgdomain.ErrInvalidRole}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodPost, "/api/organizations/12345/members", bearerFor(t, "user-1", "Alice"), map[string]string{
		"user_sub":  "user-2",
		"user_name": "Bob",
		"role":      "Admin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decodeProblem(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "role", payload.Errors[0].Field)
}

func TestChangeRoleLastOwnerIsConflict(t *testing.T) {
	fake := &fakeOrgService{err: orgdomain.ErrLastOwner}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodPut, "/api/organizations/12345/members/678", bearerFor(t, "user-1", "Alice"), map[string]string{
		"role": orgdomain.RoleMember,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	payload := decodeProblem(t, w)
	assert.Contains(t, payload.Detail, "Owner")
}

func TestRemoveMemberNoContent(t *testing.T) {
	fake := &fakeOrgService{}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodDelete, "/api/organizations/12345/members/678", bearerFor(t, "user-1", "Alice"), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRemoveMemberUnknownIsNotFound(t *testing.T) {
	fake := &fakeOrgService{err: orgdomain.ErrMemberNotFound}
	srv := newTestServer(fake, &fakeAuditService{})

	w := doRequest(srv, http.MethodDelete, "/api/organizations/12345/members/678", bearerFor(t, "user-1", "Alice"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditTrailIsOwnerGated(t *testing.T) {
	audit := &fakeAuditService{logs: []auditdomain.AuditLog{{ID: snowflake.ID(1), Action: "organization.created"}}}

	t.Run("owner sees the trail", func(t *testing.T) {
		fake := &fakeOrgService{owner: true}
		srv := newTestServer(fake, audit)

		w := doRequest(srv, http.MethodGet, "/api/organizations/12345/audit", bearerFor(t, "user-1", "Alice"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "organization.created")
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		fake := &fakeOrgService{owner: false}
		srv := newTestServer(fake, audit)

		w := doRequest(srv, http.MethodGet, "/api/organizations/12345/audit", bearerFor(t, "user-2", "Bob"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unparsable id is not found", func(t *testing.T) {
		fake := &fakeOrgService{owner: true}
		srv := newTestServer(fake, audit)

		w := doRequest(srv, http.MethodGet, "/api/organizations/not-an-id/audit", bearerFor(t, "user-1", "Alice"), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("limit is capped", func(t *testing.T) {
		fake := &fakeOrgService{owner: true}
		srv := newTestServer(fake, audit)

		w := doRequest(srv, http.MethodGet, "/api/organizations/12345/audit?limit=1000000000", bearerFor(t, "user-1", "Alice"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 100, audit.lastLimit)

		w = doRequest(srv, http.MethodGet, "/api/organizations/12345/audit", bearerFor(t, "user-1", "Alice"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 50, audit.lastLimit)
	})
}
