// Package vulnlens provides the command-line interface for the vulnlens
// scanner. It maps flags and config files into an engine configuration,
// runs the selected command and writes JSON or SARIF to stdout.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/vulnlens/cmd/vulnlens"
//	func main() { vulnlens.Execute() }
package vulnlens
