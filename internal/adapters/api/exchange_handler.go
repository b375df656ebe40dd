package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"geosynth.app/pkg/errors"
)

// ConvertRequest represents the query of a conversion request
type ConvertRequest struct {
	From   string  `form:"from" binding:"required,currency"`
	To     string  `form:"to" binding:"required,currency"`
	Amount float64 `form:"amount,default=1" binding:"gte=0"`
}

// CurrenciesResponse lists supported currencies
type CurrenciesResponse struct {
	Count      int         `json:"count"`
	Currencies interface{} `json:"currencies"`
}

// convertCurrency handles GET /api/exchange/convert
func (s *HTTPServerAdapter) convertCurrency(c *gin.Context) {
	if s.exchange == nil {
		s.handleError(c, errors.NewConfigurationError("exchange rates are not configured", nil))
		return
	}

	var req ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.handleError(c, errors.NewValidationError("from and to must be three letter currency codes, amount must not be negative"))
		return
	}

	conversion, err := s.exchange.Convert(c.Request.Context(), strings.ToUpper(req.From), strings.ToUpper(req.To), req.Amount)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversion)
}

// listCurrencies handles GET /api/exchange/currencies
func (s *HTTPServerAdapter) listCurrencies(c *gin.Context) {
	if s.exchange == nil {
		s.handleError(c, errors.NewConfigurationError("exchange rates are not configured", nil))
		return
	}

	currencies, err := s.exchange.SupportedCurrencies(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, CurrenciesResponse{Count: len(currencies), Currencies: currencies})
}
