package main

import "github.com/varalys/vulnlens/cmd/vulnlens"

func main() { vulnlens.Execute() }
