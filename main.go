package main

import "github.com/parttimenerd/hprof-redact/cmd"

func main() {
	cmd.Execute()
}
