// Package config loads vulnlens configuration from local and global YAML
// files. Layers are merged with Merge and overlaid onto an engine.Config
// with FileConfig.Apply; CLI flags take precedence over both.
package config
