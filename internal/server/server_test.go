package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	auditdomain "github.com/orgboard/orgboard/internal/audit/domain"
	"github.com/orgboard/orgboard/internal/config"
	"github.com/orgboard/orgboard/internal/identity"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

type fakeOrgService struct {
	createCalls int
	lastCaller  orgdomain.Caller
	lastOrgID   string
	lastSearch  orgdomain.SearchRequest

	org     *orgdomain.Organization
	orgs    []orgdomain.Organization
	members []orgdomain.Member
	member  *orgdomain.Member
	result  *orgdomain.SearchResult
	owner   bool
	err     error
}

func (f *fakeOrgService) Create(ctx context.Context, caller orgdomain.Caller, req orgdomain.CreateOrganizationRequest) (*orgdomain.Organization, error) {
	f.createCalls++
	f.lastCaller = caller
	if f.err != nil {
		return nil, f.err
	}
	return f.org, nil
}

func (f *fakeOrgService) List(ctx context.Context) ([]orgdomain.Organization, error) {
	return f.orgs, f.err
}

func (f *fakeOrgService) Search(ctx context.Context, req orgdomain.SearchRequest) (*orgdomain.SearchResult, error) {
	f.lastSearch = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeOrgService) Get(ctx context.Context, orgID string) (*orgdomain.Organization, error) {
	f.lastOrgID = orgID
	if f.err != nil {
		return nil, f.err
	}
	return f.org, nil
}

func (f *fakeOrgService) ListMine(ctx context.Context, callerSub string) ([]orgdomain.Organization, error) {
	f.lastCaller = orgdomain.Caller{Sub: callerSub}
	return f.orgs, f.err
}

func (f *fakeOrgService) UpdateName(ctx context.Context, caller orgdomain.Caller, orgID string, name string) (*orgdomain.Organization, error) {
	f.lastCaller = caller
	f.lastOrgID = orgID
	if f.err != nil {
		return nil, f.err
	}
	return f.org, nil
}

func (f *fakeOrgService) Delete(ctx context.Context, caller orgdomain.Caller, orgID string) error {
	f.lastCaller = caller
	f.lastOrgID = orgID
	return f.err
}

func (f *fakeOrgService) ListMembers(ctx context.Context, orgID string) ([]orgdomain.Member, error) {
	f.lastOrgID = orgID
	return f.members, f.err
}

func (f *fakeOrgService) AddMember(ctx context.Context, caller orgdomain.Caller, orgID string, req orgdomain.AddMemberRequest) (*orgdomain.Member, error) {
	f.lastCaller = caller
	f.lastOrgID = orgID
	if f.err != nil {
		return nil, f.err
	}
	return f.member, nil
}

func (f *fakeOrgService) ChangeRole(ctx context.Context, caller orgdomain.Caller, orgID, memberID, newRole string) error {
	f.lastCaller = caller
	f.lastOrgID = orgID
	return f.err
}

func (f *fakeOrgService) RemoveMember(ctx context.Context, caller orgdomain.Caller, orgID, memberID string) error {
	f.lastCaller = caller
	f.lastOrgID = orgID
	return f.err
}

func (f *fakeOrgService) IsOwner(ctx context.Context, orgID snowflake.ID, callerSub string) (bool, error) {
	return f.owner, f.err
}

type fakeAuditService struct {
	logs      []auditdomain.AuditLog
	lastLimit int
}

func (f *fakeAuditService) Record(ctx context.Context, entry auditdomain.Entry) error {
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, orgID snowflake.ID, limit int) ([]auditdomain.AuditLog, error) {
	f.lastLimit = limit
	return f.logs, nil
}

func newTestServer(orgSvc orgdomain.Service, auditSvc auditdomain.Service) *Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	cfg := config.Config{
		Auth: config.AuthConfig{
			Secret:        testSecret,
			RequiredScope: "orgs.manage",
		},
	}

	srv := &Server{
		engine:          engine,
		cfg:             cfg,
		log:             zap.NewNop(),
		verifier:        identity.NewVerifier(cfg),
		organizationSvc: orgSvc,
		auditSvc:        auditSvc,
	}
	srv.registerRoutes()
	return srv
}

func bearerFor(t *testing.T, sub, name string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"name": name,
		"scp":  "orgs.manage",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + raw
}

func doRequest(srv *Server, method, path, authorization string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) problemPayload {
	t.Helper()
	var payload problemPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}
