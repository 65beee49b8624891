package main

import "github/chapool/wallet-bridge/cmd"

func main() {
	cmd.Execute()
}
