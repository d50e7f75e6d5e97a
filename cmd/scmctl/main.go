// scmctl drives the order pipeline from a terminal.
//
// Usage:
//
//	scmctl migrate --driver sqlite --sqlite-path scm.db
//	scmctl seed --driver sqlite --sqlite-path scm.db
//	scmctl console --driver sqlite --sqlite-path scm.db --log-file scm.log
//	API_SECRET=... scmctl token --name "Kim"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
