package ha

import "strconv"

// sink receives the bytes of a discovery payload or topic. countingSink and
// bufferSink are driven by the same emission code, so a length pass and a
// write pass cannot disagree.
type sink interface {
	writeString(s string)
	writeBytes(p []byte)
	writeByte(c byte)
}

// countingSink only measures.
type countingSink struct {
	n int
}

func (c *countingSink) writeString(s string) { c.n += len(s) }
func (c *countingSink) writeBytes(p []byte)  { c.n += len(p) }
func (c *countingSink) writeByte(byte)       { c.n++ }

// bufferSink writes into a bounded Buffer and keeps the first overflow.
// After an overflow every further write is ignored.
type bufferSink struct {
	buf *Buffer
	err error
}

func (b *bufferSink) writeString(s string) {
	if b.err == nil {
		_, b.err = b.buf.WriteString(s)
	}
}

func (b *bufferSink) writeBytes(p []byte) {
	if b.err == nil {
		_, b.err = b.buf.Write(p)
	}
}

func (b *bufferSink) writeByte(c byte) {
	if b.err == nil {
		b.err = b.buf.WriteByte(c)
	}
}

const hexDigits = "0123456789abcdef"

// writeJSONString emits v as a quoted JSON string. Quote, backslash and
// control characters are escaped; everything else, including UTF-8, is
// copied through in runs.
func writeJSONString(s sink, v string) {
	s.writeByte('"')
	start := 0
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			s.writeString(v[start:i])
		}
		switch c {
		case '"', '\\':
			s.writeByte('\\')
			s.writeByte(c)
		case '\n':
			s.writeString(`\n`)
		case '\r':
			s.writeString(`\r`)
		case '\t':
			s.writeString(`\t`)
		default:
			s.writeString(`\u00`)
			s.writeByte(hexDigits[c>>4])
			s.writeByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	if start < len(v) {
		s.writeString(v[start:])
	}
	s.writeByte('"')
}

// writeUint emits v in decimal without leading zeros.
func writeUint(s sink, v uint64) {
	var scratch [20]byte
	s.writeBytes(strconv.AppendUint(scratch[:0], v, 10))
}
