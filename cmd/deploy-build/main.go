package main

import "github.com/oshokin/deploy-push/cmd/deploy-build/cmd"

func main() {
	cmd.Execute()
}
