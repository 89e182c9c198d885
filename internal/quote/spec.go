package quote

import (
	"fmt"
)

// Category classifies the resource a quote prices.
type Category string

const (
	CategoryCompute Category = "compute"
	CategoryStorage Category = "storage"
	CategoryCache   Category = "cache"
	CategoryHybrid  Category = "hybrid"
)

// CacheOperation enumerates the cache operations the protocol defines.
// Only OperationCreate is currently wired to an adapter.
type CacheOperation string

const (
	OperationCreate CacheOperation = "create"
	OperationGet    CacheOperation = "get"
	OperationSet    CacheOperation = "set"
	OperationDelete CacheOperation = "delete"
	OperationList   CacheOperation = "list"
	OperationTTL    CacheOperation = "ttl"
)

// Spec is the tagged-variant resource specification a comparison runs
// against. Exactly one category is represented per comparison; hybrid
// requests run one comparison per category and merge the results.
type Spec interface {
	Category() Category
	Validate() error
}

// ComputeSpec describes compute requirements. CodeSizeBytes and Language
// only matter to pay-per-execution providers; VM-style providers ignore them.
type ComputeSpec struct {
	CPUCores      float64 `json:"cpu_cores"`
	MemoryGB      float64 `json:"memory_gb"`
	StorageGB     float64 `json:"storage_gb"`
	GPU           string  `json:"gpu,omitempty"`
	CodeSizeBytes int64   `json:"code_size_bytes,omitempty"`
	Language      string  `json:"language,omitempty"`
}

func (ComputeSpec) Category() Category { return CategoryCompute }

func (s ComputeSpec) Validate() error {
	if s.CPUCores < 0 || s.MemoryGB < 0 || s.StorageGB < 0 {
		return fmt.Errorf("compute spec: negative resource amounts")
	}
	if s.CPUCores == 0 && s.CodeSizeBytes == 0 {
		return fmt.Errorf("compute spec: either cpu_cores or code_size_bytes required")
	}
	return nil
}

// StorageSpec describes storage requirements.
type StorageSpec struct {
	SizeGB       float64 `json:"size_gb"`
	DurationDays int     `json:"duration_days,omitempty"`
	Permanent    bool    `json:"permanent"`
}

func (StorageSpec) Category() Category { return CategoryStorage }

func (s StorageSpec) Validate() error {
	if s.SizeGB <= 0 {
		return fmt.Errorf("storage spec: size_gb must be positive")
	}
	if s.DurationDays < 0 {
		return fmt.Errorf("storage spec: duration_days cannot be negative")
	}
	return nil
}

// SizeBytes converts the requested size using the decimal convention
// (1 GB = 1e9 bytes) the upstream provider APIs are calibrated to.
func (s StorageSpec) SizeBytes() int64 {
	return int64(s.SizeGB * 1_000_000_000)
}

// CacheSpec describes cache requirements. Region is advisory; adapters fall
// back to their configured default when empty.
type CacheSpec struct {
	SizeMB    float64        `json:"size_mb"`
	Operation CacheOperation `json:"operation"`
	TTLHours  int            `json:"ttl_hours,omitempty"`
	Region    string         `json:"region,omitempty"`
}

func (CacheSpec) Category() Category { return CategoryCache }

func (s CacheSpec) Validate() error {
	if s.SizeMB <= 0 {
		return fmt.Errorf("cache spec: size_mb must be positive")
	}
	switch s.Operation {
	case OperationCreate, OperationGet, OperationSet, OperationDelete, OperationList, OperationTTL:
	default:
		return fmt.Errorf("cache spec: unknown operation %q", s.Operation)
	}
	if s.TTLHours < 0 {
		return fmt.Errorf("cache spec: ttl_hours cannot be negative")
	}
	return nil
}
