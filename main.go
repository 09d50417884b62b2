package main

import "github.com/campuspay/ms-go-billing/cmd"

func main() {
	cmd.Execute()
}
