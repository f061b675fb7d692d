package main

import "knowbase/internal/cli"

func main() {
	cli.Execute()
}
