package main

import "github.com/naka-gawa/github-statcard/cmd"

func main() {
	cmd.Execute()
}
