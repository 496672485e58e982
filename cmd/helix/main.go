package main

import "github.com/javanhut/helix-manifest/cli"

func main() {
	cli.Execute()
}
