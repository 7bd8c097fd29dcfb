package main

import "smartmail-backend/internal/cli"

func main() {
	cli.Execute()
}
