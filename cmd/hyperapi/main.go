// Package main is the entry point for hyperapi.
package main

import "github.com/artpar/hyperapi/bootstrap"

func main() {
	bootstrap.Version = version
	Execute()
}
