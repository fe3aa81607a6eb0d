// Command pypes executes pipelines declared in YAML files.
package main

import "github.com/tebeka/atexit"

func main() {
	atexit.Exit(Execute())
}
