package raster

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
)

type pageText struct {
	text    string
	warning string
}

// pageTexts extracts the plain text of every page. A page whose extraction
// fails or times out gets an empty text and a warning; only an unreadable
// document returns an error.
func pageTexts(data []byte, timeout time.Duration) (out []pageText, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("reading pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	n := reader.NumPage()
	out = make([]pageText, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			out[i-1].warning = fmt.Sprintf("page %d has no content", i)
			continue
		}
		text, err := protectExtract(page, timeout)
		if err != nil {
			out[i-1].warning = fmt.Sprintf("page %d text: %v", i, err)
			continue
		}
		out[i-1].text = text
	}
	return out, nil
}

// protectExtract bounds GetPlainText, which can hang or panic on malformed
// content streams.
func protectExtract(page pdf.Page, timeout time.Duration) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(timeout):
		return "", errors.New("timeout")
	}
}
