package rpc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	maxHeaderLineLength = 4096
	maxContentLength    = 10 << 20 // 10MB
)

// Scanner reads JSON-RPC messages from an [io.Reader] using the base protocol framing.
// The base protocol consists of a header and content part, where the header is separated
// from the content by an empty line (\r\n).
//
// https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification/#baseProtocol
type Scanner struct {
	r       *bufio.Reader
	buf     []byte
	content []byte
	done    bool
	err     error
}

// NewScanner returns a new Scanner that reads from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r: bufio.NewReaderSize(r, maxHeaderLineLength),
	}
}

// Scan reads the next message from the input.
// It returns true if a message was successfully read, or false if an error occurred
// or EOF was reached. After Scan returns false, the [Scanner.Err] method will return
// any error that occurred during scanning, except for [io.EOF], which is not reported.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	s.content = nil

	length, err := s.readHeader()
	if err == nil {
		err = s.readContent(length)
	}
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	return true
}

// readHeader reads the header part up to and including the empty line and returns the value of
// the Content-Length header. It returns [io.EOF] if the input ends before a Content-Length header
// was read.
func (s *Scanner) readHeader() (int, error) {
	length := -1
	for {
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && length >= 0 {
				return 0, errors.New("expected empty line before content")
			}
			return 0, err
		}
		if len(line) == 0 {
			if length < 0 {
				return 0, errors.New("expected content-length header")
			}
			return length, nil
		}

		name, value, found := bytes.Cut(line, []byte(":"))
		if !found {
			return 0, fmt.Errorf("invalid header: expected 'name: value', got %q", line)
		}
		// other headers like Content-Type carry nothing the server needs
		if !bytes.EqualFold(bytes.TrimSpace(name), []byte("Content-Length")) {
			continue
		}
		length, err = parseContentLength(bytes.TrimSpace(value))
		if err != nil {
			return 0, err
		}
	}
}

func parseContentLength(value []byte) (int, error) {
	length, err := strconv.Atoi(string(value))
	if err != nil {
		return 0, fmt.Errorf("invalid content-length: expected number, got %q", value)
	}
	if length < 0 {
		return 0, fmt.Errorf("invalid content-length: expected positive number, got %q", value)
	}
	if length > maxContentLength {
		return 0, fmt.Errorf("invalid content-length: exceeds maximum of 10MB, got %d", length)
	}
	return length, nil
}

func (s *Scanner) readContent(length int) error {
	if length > cap(s.buf) {
		s.buf = make([]byte, length)
	}
	n, err := io.ReadFull(s.r, s.buf[:length])
	if err != nil {
		return fmt.Errorf("unexpected EOF: read %d of %d content bytes", n, length)
	}
	s.content = s.buf[:length]
	return nil
}

// readLine reads a header line without its line terminator. The protocol expects \r\n but a
// lone \n is accepted as well.
func (s *Scanner) readLine() ([]byte, error) {
	line, err := s.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, errors.New("header line too long: exceeds maximum of 4KB")
	}
	if err != nil {
		return nil, err
	}

	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), nil
}

// Err returns the first non-EOF error encountered by the Scanner.
func (s *Scanner) Err() error {
	return s.err
}

// Bytes returns the most recent content read by a call to Scan.
// The underlying array may point to data that will be overwritten by a subsequent call to Scan.
func (s *Scanner) Bytes() []byte {
	return s.content
}

// Text returns the most recent content read by a call to Scan as a string.
func (s *Scanner) Text() string {
	return string(s.content)
}
