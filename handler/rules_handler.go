package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/taxrules"
)

// RulesHandler exposes the loaded tax tables read-only.
type RulesHandler struct {
	rules  *taxrules.Registry
	logger *zap.Logger
}

func NewRulesHandler(rules *taxrules.Registry, logger *zap.Logger) *RulesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RulesHandler{rules: rules, logger: logger}
}

// Year handles GET /tax-rules/:year.
func (h *RulesHandler) Year(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	table, err := h.rules.Table(year)
	if err != nil {
		sendServiceError(c, h.logger, "Failed to load tax rules", err)
		return
	}

	view := dto.TaxRulesView{
		Year:                       table.Year,
		FederalLowestRate:          table.Federal.Brackets.LowestRate(),
		FederalBasicPersonalAmount: table.Federal.BasicPersonalAmount,
		Provinces:                  make([]dto.ProvinceRulesView, 0, len(table.Provinces)),
	}
	for _, code := range table.ProvinceCodes() {
		p := table.Provinces[code]
		view.Provinces = append(view.Provinces, dto.ProvinceRulesView{
			Code:                code,
			Name:                p.Name,
			SalesTaxType:        string(p.SalesTax.Type),
			SalesTaxRate:        p.SalesTax.Combined(),
			LowestRate:          p.Brackets.LowestRate(),
			CreditRate:          p.CreditRate,
			BasicPersonalAmount: p.BasicPersonalAmount,
		})
	}
	c.JSON(http.StatusOK, view)
}

// MarginalRates handles GET /tax-rules/:year/provinces/:province?income=N.
func (h *RulesHandler) MarginalRates(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	income := 0.0
	if raw := c.Query("income"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid income", fmt.Errorf("income %q", raw))
			return
		}
		income = v
	}

	table, province, err := h.rules.Lookup(year, c.Param("province"))
	if err != nil {
		sendServiceError(c, h.logger, "Failed to load tax rules", err)
		return
	}

	federal := table.Federal.Brackets.MarginalRate(income)
	provincial := province.Brackets.MarginalRate(income)
	combined, _ := decimal.NewFromFloat(federal).Add(decimal.NewFromFloat(provincial)).Float64()
	c.JSON(http.StatusOK, dto.MarginalRatesView{
		Year:       year,
		Province:   strings.ToUpper(strings.TrimSpace(c.Param("province"))),
		Income:     income,
		Federal:    federal,
		Provincial: provincial,
		Combined:   combined,
	})
}

func (h *RulesHandler) year(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		sendError(c, h.logger, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tax year", fmt.Errorf("year %q", c.Param("year")))
		return 0, false
	}
	return year, true
}
