// Package core provides a small, stable facade over the vulnlens engine for
// external integrations. It re-exports a narrow API surface so tools can
// depend on a stable import path without reaching into internal packages.
//
// Example:
//
//	res, err := core.ScanProject(ctx, ".", core.DefaultConfig())
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
