package docloader

import (
	"bytes"
	"io"
	"os"
	"strconv"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func parseCrateID(s string) (int, error) {
	return strconv.Atoi(s)
}
