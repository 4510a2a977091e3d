package fetch

import (
	"fmt"
	"os"
)

// openDestination opens the output file under the resume contract: append
// when bytes already exist, truncate otherwise. The byte count on disk is the
// only checkpoint there is, so it is read exactly once, before any request.
func openDestination(path string) (*os.File, int64, error) {
	var downloaded int64
	fileMode := os.O_CREATE | os.O_WRONLY
	if fileInfo, err := os.Stat(path); err == nil {
		downloaded = fileInfo.Size()
		fileMode |= os.O_APPEND
	} else {
		fileMode |= os.O_TRUNC
	}
	outFile, err := os.OpenFile(path, fileMode, 0644)
	if err != nil {
		return nil, 0, fmt.Errorf("error opening output file: %v", err)
	}
	return outFile, downloaded, nil
}
