package main

import "github.com/amirasaad/accounts/internal/cli"

func main() {
	cli.Execute()
}
