package main

import "github.com/vidgrab/vidgrab/internal/cli"

func main() {
	cli.Execute()
}
