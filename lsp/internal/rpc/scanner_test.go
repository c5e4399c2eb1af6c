package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func TestScanner(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		var w bytes.Buffer
		s := NewScanner(&w)

		msg1 := `{"jsonrpc":"2.0","method":"initialize","id":1,"params":null}`
		write(t, &w, "Content-Length:  %d \r\n", len(msg1))
		write(t, &w, "\r\n")
		write(t, &w, "%s", msg1)

		assert.True(t, s.Scan(), "want true as msg1 is unread")
		require.EqualValues(t, s.Text(), msg1, "failed to read msg1")
		require.NoError(t, s.Err(), "want no errors reading msg1")

		msg2 := `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.lexi","text":"Count"}}}`
		write(t, &w, "content-Length: %d\n", len(msg2))
		write(t, &w, "content-type: application/vscode-jsonrpc; charset=utf-8\r\n")
		write(t, &w, "\n")
		write(t, &w, "%s", msg2)

		assert.True(t, s.Scan(), "want true as msg2 is unread")
		require.EqualValues(t, s.Text(), msg2, "failed to read msg2")
		require.NoError(t, s.Err(), "want no errors reading msg2")

		// headers other than Content-Length are skipped wherever they appear
		msg3 := `{"jsonrpc":"2.0","method":"shutdown","id":3}`
		write(t, &w, "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n")
		write(t, &w, "X-Custom-Header: some-value\r\n")
		write(t, &w, "Content-Length: %d\r\n", len(msg3))
		write(t, &w, "X-Another-Header: ignored\r\n")
		write(t, &w, "\r\n")
		write(t, &w, "%s", msg3)

		assert.True(t, s.Scan(), "want true as msg3 is unread")
		require.EqualValues(t, s.Text(), msg3, "failed to read msg3")
		require.NoError(t, s.Err(), "want no errors reading msg3")

		write(t, &w, "Content-Length: 0\r\n")
		write(t, &w, "\r\n")

		assert.True(t, s.Scan(), "want true as empty msg4 is unread")
		require.EqualValues(t, s.Text(), "", "msg4 should be empty content")
		require.NoError(t, s.Err(), "want no errors reading msg4")

		for range 2 {
			assert.False(t, s.Scan(), "want false as all msgs are read")
			assert.EqualValues(t, s.Text(), "", "should be empty")
			assert.NoError(t, s.Err(), "want no errors reading all msgs")
		}
	})

	t.Run("EOFInHeaderIsNotAnError", func(t *testing.T) {
		t.Parallel()
		var w bytes.Buffer
		s := NewScanner(&w)

		write(t, &w, "Content-Length: 10")

		assert.False(t, s.Scan(), "want false as header line incomplete")
		assert.Nil(t, s.Err(), "EOF during header read is not an error")
		assert.EqualValues(t, s.Text(), "", "no content on EOF")
		assert.False(t, s.Scan(), "still false")
		assert.Nil(t, s.Err(), "still no error")
	})

	t.Run("ReaderError", func(t *testing.T) {
		t.Parallel()
		readErr := errors.New("connection reset")
		s := NewScanner(iotest.ErrReader(readErr))

		assert.False(t, s.Scan(), "want false on reader error")
		require.NotNil(t, s.Err(), "expect error")
		assert.True(t, errors.Is(s.Err(), readErr), "error should be the underlying cause, got %v", s.Err())
	})

	msg := `{"jsonrpc":"2.0","method":"initialize","id":1,"params":null}`
	tests := map[string]struct {
		in      string
		wantErr string
	}{
		"InvalidHeaderFormat": {
			in:      fmt.Sprintf("Content-Length %d\r\n\r\n%s", len(msg), msg),
			wantErr: "invalid header",
		},
		"InvalidContentLengthValue": {
			in:      "Content-Length: invalid\r\n\r\n" + msg,
			wantErr: "invalid content-length: expected number",
		},
		"NegativeContentLength": {
			in:      "Content-Length: -1\r\n\r\n",
			wantErr: "expected positive number",
		},
		"ContentLengthTooLarge": {
			in:      fmt.Sprintf("Content-Length: %d\r\n\r\n", maxContentLength+1),
			wantErr: "exceeds maximum",
		},
		"NoContent": {
			in:      "Content-Length: 100\r\n\r\n",
			wantErr: "unexpected EOF: read 0 of 100",
		},
		"PartialContent": {
			in:      fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(msg), msg[:len(msg)-8]),
			wantErr: "unexpected EOF",
		},
		"EmptyLineBeforeContentLength": {
			in:      "\r\n",
			wantErr: "expected content-length header",
		},
		"ContentInHeaderPosition": {
			in:      fmt.Sprintf("Content-Length: %d\r\n%s\r\n", len(`{"jsonrpc":"2.0","id":1}`), `{"jsonrpc":"2.0","id":1}`),
			wantErr: "expected empty line before content",
		},
		"HeaderLineTooLong": {
			in:      "Content-Length: " + strings.Repeat("9", 5000) + "\r\n",
			wantErr: "exceeds maximum of 4KB",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := NewScanner(strings.NewReader(test.in))

			assert.False(t, s.Scan(), "Scan(%q) want false", test.in)
			require.NotNil(t, s.Err(), "Scan(%q) want error", test.in)
			assert.True(t, strings.Contains(s.Err().Error(), test.wantErr), "Scan(%q) error %q should contain %q", test.in, s.Err(), test.wantErr)
			assert.EqualValues(t, s.Text(), "", "no content on error")
			assert.False(t, s.Scan(), "Scan(%q) stays false after an error", test.in)
		})
	}
}

func TestWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)

	msg, err := Response(NewID(7), nil)
	require.NoError(t, err, "Response")
	require.NoError(t, w.Write(msg), "Write")

	want := `{"jsonrpc":"2.0","id":7,"result":null}`
	assert.EqualValues(t, out.String(), fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(want), want), "unexpected framing")

	t.Run("RoundTripThroughScanner", func(t *testing.T) {
		s := NewScanner(&out)

		require.True(t, s.Scan(), "want the written message")
		assert.EqualValues(t, s.Text(), want, "unexpected message")
	})
}

func TestMessage(t *testing.T) {
	t.Run("StringID", func(t *testing.T) {
		var msg Message
		err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":"abc","method":"shutdown"}`), &msg)

		require.NoError(t, err, "Unmarshal")
		require.True(t, msg.IsRequest(), "message with id is a request")
		assert.EqualValues(t, msg.ID.String(), "abc", "id")
	})

	t.Run("Notification", func(t *testing.T) {
		var msg Message
		err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`), &msg)

		require.NoError(t, err, "Unmarshal")
		assert.False(t, msg.IsRequest(), "message without id is a notification")
	})

	t.Run("InvalidVersion", func(t *testing.T) {
		var msg Message
		err := json.Unmarshal([]byte(`{"jsonrpc":"1.0","id":1,"method":"shutdown"}`), &msg)

		assert.NotNil(t, err, "want error for invalid version")
	})

	t.Run("ErrorResponse", func(t *testing.T) {
		content, err := json.Marshal(ErrorResponse(NewID(2), MethodNotFound, "method not found"))

		require.NoError(t, err, "Marshal")
		assert.EqualValues(t, string(content), `{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"method not found"}}`, "unexpected response")
	})
}

func write(t *testing.T, w *bytes.Buffer, format string, args ...any) {
	t.Helper()
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}
