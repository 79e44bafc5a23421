package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
)

type addMemberRequest struct {
	UserSub  string `json:"user_sub"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// Listing members needs an authenticated caller but not ownership.
func (s *Server) listMembers(c *gin.Context) {
	members, err := s.organizationSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) addMember(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.organizationSvc.AddMember(c.Request.Context(), caller, c.Param("id"), orgdomain.AddMemberRequest{
		UserSub:  req.UserSub,
		UserName: req.UserName,
		Role:     req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) changeMemberRole(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.organizationSvc.ChangeRole(c.Request.Context(), caller, c.Param("id"), c.Param("memberId"), req.Role); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeMember(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	if err := s.organizationSvc.RemoveMember(c.Request.Context(), caller, c.Param("id"), c.Param("memberId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
