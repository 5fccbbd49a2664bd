// Package engine contains the core scanning logic for vulnlens. It walks a
// project, runs the enabled checks over every eligible file, audits
// dependency manifests and aggregates everything into a scored result.
// This package is internal; external consumers should use the stable facade
// in pkg/core.
package engine
