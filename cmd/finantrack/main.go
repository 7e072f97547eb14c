package main

import "finantrack/internal/cli"

func main() {
	cli.Execute()
}
