package util

import (
	"flag"
	"os"
	"strings"
)

// RunningInTest reports whether the binary is a "go test" binary.
func RunningInTest() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test")
}
