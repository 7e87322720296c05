package compression

import (
	"io"

	"github.com/golang/snappy"
)

// Snappy files use the framed stream format so a table never has to be held
// as a single block.

func newSnappyReader(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}

func newSnappyWriter(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}
