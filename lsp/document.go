package lsp

import (
	"fmt"

	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/lsp/internal/rpc"
	"github.com/teleivo/lexi/lsp/internal/source"
)

// document is an open text document and the result of scanning its latest content.
type document struct {
	uri     rpc.DocumentURI
	version int32
	src     []byte
	file    *source.File
	result  lexi.Result
}

func newDocument(item rpc.TextDocumentItem) *document {
	doc := &document{
		uri:     item.URI,
		version: item.Version,
		src:     []byte(item.Text),
	}
	doc.file = source.New(doc.src)
	doc.scan()
	return doc
}

// apply applies a batch of content changes in order and rescans the result as the given version.
// The document is left unchanged if any change fails.
func (d *document) apply(version int32, changes []rpc.TextDocumentContentChangeEvent) error {
	next := *d
	for _, change := range changes {
		if err := next.change(change); err != nil {
			return err
		}
	}
	next.version = version
	next.scan()
	*d = next
	return nil
}

// change applies a content change. A change without a range replaces the entire content. Changes
// are not rescanned until scan is called so a batch of changes is only scanned once.
func (d *document) change(event rpc.TextDocumentContentChangeEvent) error {
	if event.Range == nil {
		d.src = []byte(event.Text)
		d.file = source.New(d.src)
		return nil
	}

	start, err := d.file.Offset(event.Range.Start)
	if err != nil {
		return fmt.Errorf("invalid range start: %v", err)
	}
	end, err := d.file.Offset(event.Range.End)
	if err != nil {
		return fmt.Errorf("invalid range end: %v", err)
	}
	if start > end {
		return fmt.Errorf("invalid range: start %d:%d is after end %d:%d",
			event.Range.Start.Line, event.Range.Start.Character,
			event.Range.End.Line, event.Range.End.Character)
	}

	src := make([]byte, 0, len(d.src)-(end-start)+len(event.Text))
	src = append(src, d.src[:start]...)
	src = append(src, event.Text...)
	src = append(src, d.src[end:]...)
	d.src = src
	d.file = source.New(src)
	return nil
}

func (d *document) scan() {
	d.result = lexi.Scan(d.src)
}
