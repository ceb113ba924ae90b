package main

import "github.com/zigchain/dex-analytics/cmd"

func main() {
	cmd.Execute()
}
