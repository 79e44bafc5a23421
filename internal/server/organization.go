package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
)

type organizationRequest struct {
	Name string `json:"name"`
}

func (s *Server) listOrganizations(c *gin.Context) {
	orgs, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (s *Server) searchOrganizations(c *gin.Context) {
	result, err := s.organizationSvc.Search(c.Request.Context(), parseSearchRequest(c.Query))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getOrganization(c *gin.Context) {
	org, err := s.organizationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) listMyOrganizations(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	orgs, err := s.organizationSvc.ListMine(c.Request.Context(), caller.Sub)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (s *Server) createOrganization(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), caller, orgdomain.CreateOrganizationRequest{Name: req.Name})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (s *Server) updateOrganization(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.organizationSvc.UpdateName(c.Request.Context(), caller, c.Param("id"), req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) deleteOrganization(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	if err := s.organizationSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
