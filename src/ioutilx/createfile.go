// Package ioutilx holds the small filesystem helpers the tarpxz commands
// share, adapted from this repository's original file-creation helper.
package ioutilx

import "os"

// CreateFile opens filename for writing, creating it if necessary and
// truncating it if it already exists. Unlike the index writer's
// CreateFile, compressing over an existing output path is expected
// (re-running a compress command should simply replace its prior output),
// so O_EXCL is deliberately not set here.
func CreateFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0640)
}
