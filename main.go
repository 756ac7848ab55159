package main

import "listing-reconciler/cmd"

func main() {
	cmd.Execute()
}
