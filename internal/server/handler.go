package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/pkg/pricing"
)

// GreeksRequest prices one option.
type GreeksRequest struct {
	Type     string  `json:"type" binding:"required"`
	Stock    float64 `json:"stock" binding:"gt=0"`
	Strike   float64 `json:"strike" binding:"gt=0"`
	Rate     float64 `json:"rate"`
	Sigma    float64 `json:"sigma" binding:"gte=0"`
	Maturity float64 `json:"maturity" binding:"gte=0"`
}

// IVRequest inverts one option price.
type IVRequest struct {
	Type     string  `json:"type" binding:"required"`
	Price    float64 `json:"price"`
	Stock    float64 `json:"stock" binding:"gt=0"`
	Strike   float64 `json:"strike" binding:"gt=0"`
	Rate     float64 `json:"rate"`
	Maturity float64 `json:"maturity" binding:"gte=0"`
	// Guess seeds the search; zero selects the closed-form approximation.
	Guess float64 `json:"guess" binding:"gte=0"`
}

// IVResponse is a converged implied volatility.
type IVResponse struct {
	ImpliedVolatility float64 `json:"implied_volatility"`
	Iterations        int     `json:"iterations"`
}

// IVFailure is returned with 422 when no volatility reproduces the price.
// Infinite values are encoded as null.
type IVFailure struct {
	Error        string   `json:"error"`
	BestEstimate *float64 `json:"best_estimate"`
	Low          *float64 `json:"low"`
	High         *float64 `json:"high"`
	Iterations   int      `json:"iterations"`
}

// Greeks returns the price and greeks of one option.
func (s *Server) Greeks(c *gin.Context) {
	var req GreeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := pricing.ParseKind(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := pricing.FromRate(req.Stock, req.Strike, req.Rate, req.Sigma, req.Maturity)
	c.JSON(http.StatusOK, pricing.Evaluate(kind, in))
}

// ImpliedVolatility solves for the volatility matching the given price.
func (s *Server) ImpliedVolatility(c *gin.Context) {
	var req IVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := pricing.ParseKind(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := pricing.FromRate(req.Stock, req.Strike, req.Rate, 0, req.Maturity)
	sol, err := s.solver.ImpliedVol(kind, req.Price, in, req.Guess)
	if err != nil {
		var ivErr *pricing.IVError
		if !errors.As(err, &ivErr) {
			logger.Errorf("http: implied volatility: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.metrics.IVFailures.WithLabelValues(failureReason(ivErr)).Inc()
		logger.Debugf("http: implied volatility for %s at %g: %v", kind, req.Price, err)
		c.JSON(http.StatusUnprocessableEntity, IVFailure{
			Error:        err.Error(),
			BestEstimate: finite(ivErr.Best),
			Low:          finite(ivErr.Low),
			High:         finite(ivErr.High),
			Iterations:   ivErr.Iterations,
		})
		return
	}

	s.metrics.IVIterations.Observe(float64(sol.Iterations))
	c.JSON(http.StatusOK, IVResponse{ImpliedVolatility: sol.Sigma, Iterations: sol.Iterations})
}

func failureReason(err *pricing.IVError) string {
	switch {
	case errors.Is(err, pricing.ErrPriceOutOfRange):
		return "out_of_range"
	case errors.Is(err, pricing.ErrZeroMaturity):
		return "zero_maturity"
	default:
		return "no_convergence"
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
