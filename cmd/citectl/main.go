// Package main provides citectl, a command line front end to the citation
// normalizer.
//
// Usage:
//
//	citectl extract message.json
//	citectl render --format html message.yaml
//	cat message.json | citectl split
package main

func main() {
	Execute()
}
