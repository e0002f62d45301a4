package main

import "github.com/uib-ub/snomedct-transform/cmd"

func main() {
	cmd.Execute()
}
