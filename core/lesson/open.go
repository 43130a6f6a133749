package lesson

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/internal/validation"
)

// xzMagic is the xz stream header.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// Decompress returns r, transparently decompressed when it holds an xz
// stream. Detection is by magic bytes, not by file name.
func Decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if !bytes.Equal(head, xzMagic) {
		return br, nil
	}
	xr, err := xz.NewReader(br)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create xz reader")
	}
	return xr, nil
}

// ReadAll reads r to the end, decompressing xz input and refusing more than
// validation.MaxFileSize bytes of content.
func ReadAll(r io.Reader) ([]byte, error) {
	dr, err := Decompress(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(dr, validation.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > validation.MaxFileSize {
		return nil, &errors.ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("content exceeds %d bytes", validation.MaxFileSize),
		}
	}
	return data, nil
}

// ReadFile reads a plain or xz-compressed file.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("file", path)
		}
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	data, err := ReadAll(f)
	if err != nil {
		var ve *errors.ValidationError
		if errors.As(err, &ve) {
			return nil, err
		}
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}
