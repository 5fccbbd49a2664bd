package scanner

import (
	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/types"
)

// Scanner is one check category run against a single file. Implementations
// must be safe for concurrent use; the pattern set is shared read-only.
type Scanner interface {
	// Name is a short identifier used in logs.
	Name() string

	// Category selects the signatures the check consumes from a set.
	Category() patterns.Category

	// Scan returns the raw findings for fc. Severity filtering, dedupe and
	// ordering are applied by the caller.
	Scan(fc FileContext, set patterns.Set) []types.Finding
}
