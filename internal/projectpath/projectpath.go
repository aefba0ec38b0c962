package projectpath

import (
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root of the project for locating .env and migrations no matter
	// which directory the binary or tests are invoked from
	Root = filepath.Join(filepath.Dir(b), "../..")
)
