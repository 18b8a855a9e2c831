package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	"github.com/shopspring/decimal"
)

type createResourceRequest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description *string         `json:"description"`
	Amount      int64           `json:"amount"`
	Price       decimal.Decimal `json:"price"`
}

type updateResourceRequest struct {
	Name        *string          `json:"name,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *int64           `json:"amount,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// @Summary      Create Resource
// @Description  Create a new inventory resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createResourceRequest true "Create Resource Request"
// @Success      201  {object}  resourcedomain.Resource
// @Router       /resources [post]
func (s *Server) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.resourceSvc.Create(c.Request.Context(), resourcedomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Type:        strings.TrimSpace(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
		Price:       req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "resource.create", resp.ID, map[string]any{
		"name": resp.Name,
		"type": resp.Type,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// @Summary      List Resources
// @Description  List inventory, paginated; name/type prefix search
// @Tags         resources
// @Produce      json
// @Param        search query string false "Prefix search over name and type"
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Limit"
// @Param        latest query bool   false "Bypass the listing cache"
// @Success      200  {object}  resourcedomain.ListResponse
// @Router       /resources [get]
func (s *Server) ListResources(c *gin.Context) {
	var query struct {
		Search string `form:"search"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
		Latest bool   `form:"latest"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.resourceSvc.List(c.Request.Context(), resourcedomain.ListRequest{
		Search: strings.TrimSpace(query.Search),
		Page:   query.Page,
		Limit:  query.Limit,
		Latest: query.Latest,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Resource
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Resource ID"
// @Success      200  {object}  resourcedomain.Resource
// @Router       /resources/{id} [get]
func (s *Server) GetResource(c *gin.Context) {
	resp, err := s.resourceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Resource
// @Description  Full update of a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true  "Resource ID"
// @Param        request body  updateResourceRequest true  "Update Resource Request"
// @Success      200  {object}  resourcedomain.Resource
// @Router       /resources/{id} [put]
func (s *Server) UpdateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	typ := strings.TrimSpace(req.Type)
	resp, err := s.resourceSvc.Update(c.Request.Context(), resourcedomain.UpdateRequest{
		ID:          c.Param("id"),
		Name:        &name,
		Type:        &typ,
		Description: req.Description,
		Amount:      &req.Amount,
		Price:       &req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "resource.update", resp.ID, nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Patch Resource
// @Description  Partial update; omitted fields are left untouched
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true  "Resource ID"
// @Param        request body  updateResourceRequest true  "Patch Resource Request"
// @Success      200  {object}  resourcedomain.Resource
// @Router       /resources/{id} [patch]
func (s *Server) PatchResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.resourceSvc.Update(c.Request.Context(), resourcedomain.UpdateRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Amount:      req.Amount,
		Price:       req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "resource.patch", resp.ID, nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Resource
// @Tags         resources
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Resource ID"
// @Success      200  {object}  resourcedomain.Resource
// @Router       /resources/{id} [delete]
func (s *Server) DeleteResource(c *gin.Context) {
	resp, err := s.resourceSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "resource.delete", resp.ID, map[string]any{"name": resp.Name})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
