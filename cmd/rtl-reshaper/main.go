package main

import "rtl-reshaper/internal/cli"

func main() {
	cli.Execute()
}
