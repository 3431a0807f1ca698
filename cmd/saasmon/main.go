// Package main is the entry point for saasmon.
package main

func main() {
	Execute()
}
