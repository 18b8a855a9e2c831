package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	purchasedomain "github.com/harborline/shopd/internal/purchase/domain"
)

type purchaseRequest struct {
	CustomerID int64 `json:"customerId"`
	Items      []struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	} `json:"items"`
}

type refundRequest struct {
	BillID string `json:"billId"`
}

// @Summary      Purchase Resources
// @Description  Purchase resources for a customer and issue a bill
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body purchaseRequest true "Purchase Request"
// @Success      201  {object}  purchasedomain.PurchaseResult
// @Router       /shop/purchase [post]
func (s *Server) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order := purchasedomain.Order{CustomerID: snowflake.ID(req.CustomerID)}
	for _, item := range req.Items {
		order.Items = append(order.Items, purchasedomain.OrderItem{
			ResourceID: item.ID,
			Amount:     item.Amount,
		})
	}

	resp, err := s.purchaseSvc.Purchase(c.Request.Context(), order)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary      Refund Purchase
// @Description  Revert a bill: restock resources, credit the customer
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body refundRequest true "Refund Request"
// @Success      200  {object}  purchasedomain.RefundResult
// @Router       /shop/refund [post]
func (s *Server) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Refund(c.Request.Context(), req.BillID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary      Get Bill
// @Tags         shop
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  billdomain.Bill
// @Router       /shop/bill/{id} [get]
func (s *Server) GetBill(c *gin.Context) {
	bill, err := s.bills.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if bill == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bill})
}

// @Summary      List Bills
// @Description  List the authenticated customer's bills, newest first
// @Tags         shop
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []billdomain.Bill
// @Router       /shop/bills [get]
func (s *Server) ListBills(c *gin.Context) {
	identity := identityFrom(c)
	bills, err := s.bills.FindByCustomer(c.Request.Context(), int64(identity.User.ID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bills})
}

// @Summary      Currency Rates
// @Description  Current exchange rates from the upstream provider
// @Tags         shop
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []currency.Rate
// @Router       /shop/currency-rates [get]
func (s *Server) GetCurrencyRates(c *gin.Context) {
	rates, err := s.rates.GetRates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rates})
}
