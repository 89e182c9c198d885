package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/galaksio/quote-engine/internal/engine"
	"github.com/galaksio/quote-engine/internal/quote"
)

type computeQuoteRequest struct {
	CPUCores  float64  `json:"cpu_cores"`
	MemoryGB  float64  `json:"memory_gb"`
	StorageGB float64  `json:"storage_gb"`
	GPU       string   `json:"gpu"`
	Providers []string `json:"providers"`
}

type storageQuoteRequest struct {
	SizeGB       float64  `json:"size_gb"`
	DurationDays int      `json:"duration_days"`
	Permanent    bool     `json:"permanent"`
	Providers    []string `json:"providers"`
}

type cacheQuoteRequest struct {
	SizeMB    float64  `json:"size_mb"`
	Operation string   `json:"operation"`
	TTLHours  int      `json:"ttl_hours"`
	Region    string   `json:"region"`
	Providers []string `json:"providers"`
}

func (s *Server) compareCompute(c *gin.Context) {
	req := computeQuoteRequest{CPUCores: 1, MemoryGB: 1, StorageGB: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.ComputeSpec{
		CPUCores:  req.CPUCores,
		MemoryGB:  req.MemoryGB,
		StorageGB: req.StorageGB,
		GPU:       req.GPU,
	}
	s.compare(c, spec, req.Providers)
}

func (s *Server) compareStorage(c *gin.Context) {
	req := storageQuoteRequest{SizeGB: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.StorageSpec{
		SizeGB:       req.SizeGB,
		DurationDays: req.DurationDays,
		Permanent:    req.Permanent,
	}
	s.compare(c, spec, req.Providers)
}

func (s *Server) compareCache(c *gin.Context) {
	req := cacheQuoteRequest{SizeMB: 100, Operation: string(quote.OperationCreate)}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.CacheSpec{
		SizeMB:    req.SizeMB,
		Operation: quote.CacheOperation(req.Operation),
		TTLHours:  req.TTLHours,
		Region:    req.Region,
	}
	s.compare(c, spec, req.Providers)
}

// compare runs a full comparison and renders it, mapping ErrNoQuotes to 404
// so an empty result never masquerades as success.
func (s *Server) compare(c *gin.Context, spec quote.Spec, providers []string) {
	cmp, err := s.engine.Compare(c.Request.Context(), spec, providers...)
	if err != nil {
		if errors.Is(err, engine.ErrNoQuotes) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "no quotes available"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.recordHistory(c.Request.Context(), cmp)
	c.JSON(http.StatusOK, cmp)
}

// Broker API below: request shapes the payment broker sends.

type storeQuoteRequest struct {
	FileSize  int64  `json:"fileSize"`
	Permanent bool   `json:"permanent"`
	TTL       int    `json:"ttl"`
	FileName  string `json:"fileName"`
	Provider  string `json:"provider"`
}

type runQuoteRequest struct {
	CodeSize int64  `json:"codeSize"`
	Language string `json:"language"`
}

type cacheCreateRequest struct {
	Region string `json:"region"`
}

type bestQuoteRequest struct {
	Operation string `json:"operation"`

	FileSize  int64 `json:"fileSize"`
	Permanent bool  `json:"permanent"`
	TTL       int   `json:"ttl"`

	CodeSize int64  `json:"codeSize"`
	Language string `json:"language"`

	Region string `json:"region"`
}

func (s *Server) storeQuote(c *gin.Context) {
	req := storeQuoteRequest{TTL: 3600}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.StorageSpec{
		SizeGB:    float64(req.FileSize) / 1_000_000_000,
		Permanent: req.Permanent,
	}

	var providers []string
	if req.Provider != "" {
		providers = []string{req.Provider}
	}

	cmp, err := s.engine.Compare(c.Request.Context(), spec, providers...)
	if err != nil {
		if errors.Is(err, engine.ErrNoQuotes) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "no storage providers available for this file size"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.recordHistory(c.Request.Context(), cmp)
	c.JSON(http.StatusOK, gin.H{
		"quotes":       cmp.Quotes,
		"best":         cmp.BestOffer,
		"count":        len(cmp.Quotes),
		"file_size_mb": float64(req.FileSize) / 1_000_000,
	})
}

func (s *Server) runQuote(c *gin.Context) {
	req := runQuoteRequest{Language: "python"}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.ComputeSpec{
		CodeSizeBytes: req.CodeSize,
		Language:      req.Language,
	}

	cmp, err := s.engine.Compare(c.Request.Context(), spec, "merit-systems")
	if err != nil {
		if errors.Is(err, engine.ErrNoQuotes) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "compute provider unavailable"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.recordHistory(c.Request.Context(), cmp)
	c.JSON(http.StatusOK, cmp.BestOffer)
}

func (s *Server) cacheQuote(c *gin.Context) {
	req := cacheCreateRequest{Region: "us-east-1"}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	spec := quote.CacheSpec{
		SizeMB:    100,
		Operation: quote.OperationCreate,
		Region:    req.Region,
	}

	cmp, err := s.engine.Compare(c.Request.Context(), spec)
	if err != nil {
		if errors.Is(err, engine.ErrNoQuotes) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "cache provider unavailable"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.recordHistory(c.Request.Context(), cmp)
	c.JSON(http.StatusOK, cmp.BestOffer)
}

func (s *Server) bestQuote(c *gin.Context) {
	req := bestQuoteRequest{TTL: 3600, Language: "python", Region: "us-east-1"}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var spec quote.Spec
	switch req.Operation {
	case "store":
		spec = quote.StorageSpec{
			SizeGB:    float64(req.FileSize) / 1_000_000_000,
			Permanent: req.Permanent,
		}
	case "run":
		spec = quote.ComputeSpec{
			CodeSizeBytes: req.CodeSize,
			Language:      req.Language,
		}
	case "cache":
		spec = quote.CacheSpec{
			SizeMB:    100,
			Operation: quote.OperationCreate,
			Region:    req.Region,
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("unknown operation type: %q. Supported: 'store', 'run', 'cache'", req.Operation),
		})
		return
	}

	best, err := s.engine.BestOffer(c.Request.Context(), spec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if best == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no quotes available"})
		return
	}

	c.JSON(http.StatusOK, best)
}
