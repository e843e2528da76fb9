package main

import "github.com/danpilch/cpuusage/pkg/cli"

func main() {
	cli.Execute()
}
