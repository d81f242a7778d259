// Package lexmatch provides the command-line interface for the lexmatch
// tool. It configures subcommands (match, subst, compile, inspect, serve),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/lexmatch/lexmatch/cmd/lexmatch"
//	func main() { lexmatch.Execute() }
package lexmatch
