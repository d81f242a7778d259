package main

import "github.com/lexmatch/lexmatch/cmd/lexmatch"

func main() { lexmatch.Execute() }
