package main

import "github.com/oshokin/deploy-push/cmd/deploy-push/cmd"

func main() {
	cmd.Execute()
}
