package csv

import (
	"bufio"
	"bytes"
	"io"
)

// streamingRewriter is an io.Reader that replaces every occurrence of pat
// with repl without buffering the whole stream. It keeps the last
// len(pat)-1 bytes of each block as carry so matches spanning a chunk
// boundary are still found.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	carry []byte
	buf   bytes.Buffer
	eof   bool
}

func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	capacity := 0
	if n := len(pat) - 1; n > 0 {
		capacity = n
	}
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		carry: make([]byte, 0, capacity),
	}
}

// Read serves buffered output first; when empty it reads the next chunk,
// replaces matches and withholds the trailing carry. On EOF the carry is
// flushed.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for {
		if sr.buf.Len() > 0 {
			return sr.buf.Read(p)
		}
		if sr.eof {
			return 0, io.EOF
		}

		tmp := make([]byte, 64*1024)
		n, rerr := sr.br.Read(tmp)
		if n > 0 {
			block := tmp[:n]
			if len(sr.carry) > 0 {
				block = append(append(make([]byte, 0, len(sr.carry)+n), sr.carry...), block...)
			}
			if len(sr.pat) > 0 && !bytes.Equal(sr.pat, sr.repl) {
				block = bytes.ReplaceAll(block, sr.pat, sr.repl)
			}
			k := max(len(sr.pat)-1, 0)
			if k > 0 && len(block) > k {
				sr.buf.Write(block[:len(block)-k])
				sr.carry = append(sr.carry[:0], block[len(block)-k:]...)
			} else if k > 0 {
				sr.carry = append(sr.carry[:0], block...)
			} else {
				sr.buf.Write(block)
			}
		}

		if rerr == io.EOF {
			if len(sr.carry) > 0 {
				sr.buf.Write(sr.carry)
				sr.carry = sr.carry[:0]
			}
			sr.eof = true
		} else if rerr != nil {
			return 0, rerr
		}
	}
}

// withReplacements chains one rewriter per pattern, in key order.
func withReplacements(r io.Reader, pairs [][2]string) io.Reader {
	for _, p := range pairs {
		if p[0] == "" {
			continue
		}
		r = newStreamingRewriter(r, []byte(p[0]), []byte(p[1]))
	}
	return r
}
