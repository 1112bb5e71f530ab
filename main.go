package main

import "github.com/saadjs/hydrate-cli/cmd/hydrate"

func main() {
	hydrate.Execute()
}
