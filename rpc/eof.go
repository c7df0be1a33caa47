package rpc

import (
	"errors"
	"fmt"
	"io"
)

// EndOfStream wraps io.EOF so a transport's Recv can report a clean
// end-of-stream in an idiomatic Go way: errors.Is(err, io.EOF).
func EndOfStream() error {
	return fmt.Errorf("%w", io.EOF)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
