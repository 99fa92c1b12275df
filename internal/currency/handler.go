package currency

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cavos-labs/forma-api/internal/api"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetPrices returns the plan prices converted into the requested currency.
// Defaults to CRC.
func (h *Handler) GetPrices(c *gin.Context) {
	code := strings.ToUpper(c.DefaultQuery("currency", "CRC"))
	if len(code) != 3 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid currency code"})
		return
	}

	rate, source, err := h.service.GetRate(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"currency": code,
		"rate":     rate,
		"source":   source,
		"prices": gin.H{
			"monthly": roundPrice(MonthlyPriceUSD * rate),
			"yearly":  roundPrice(YearlyPriceUSD * rate),
		},
		"base_prices_usd": gin.H{
			"monthly": MonthlyPriceUSD,
			"yearly":  YearlyPriceUSD,
		},
	})
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
