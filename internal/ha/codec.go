package ha

import (
	"bytes"
	"fmt"
	"strconv"
)

// Wire payloads.
const (
	PayloadOn      = "ON"
	PayloadOff     = "OFF"
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// colorSeparator joins RGB components on the wire.
const colorSeparator = ','

// RGB is a 3-component color.
type RGB struct {
	R, G, B uint8
}

// String returns the wire form "r,g,b".
func (c RGB) String() string {
	var scratch [11]byte
	return string(encodeRGB(c, scratch[:0]))
}

func encodeBool(v bool, dst []byte) []byte {
	if v {
		return append(dst, PayloadOn...)
	}
	return append(dst, PayloadOff...)
}

// decodeBool accepts exactly PayloadOn as true. Every other payload is off.
func decodeBool(p []byte) bool {
	return string(p) == PayloadOn
}

func encodeUint8(v uint8, dst []byte) []byte {
	return strconv.AppendUint(dst, uint64(v), 10)
}

// decodeUint8 parses the leading decimal digits of p. Trailing bytes after
// the digits are ignored. A payload without leading digits (empty, signed,
// non-numeric) or a value above 255 is malformed.
func decodeUint8(p []byte) (uint8, error) {
	var v uint
	i := 0
	for ; i < len(p) && isDigit(p[i]); i++ {
		v = v*10 + uint(p[i]-'0')
		if v > 255 {
			return 0, fmt.Errorf("%w: %q exceeds 255", ErrMalformedPayload, p)
		}
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrMalformedPayload, p)
	}
	return uint8(v), nil
}

// parseComponent parses a color component that must consist of digits only.
func parseComponent(p []byte) (uint8, error) {
	if len(p) == 0 || len(p) > 3 {
		return 0, ErrMalformedPayload
	}
	var v uint
	for _, c := range p {
		if !isDigit(c) {
			return 0, ErrMalformedPayload
		}
		v = v*10 + uint(c-'0')
	}
	if v > 255 {
		return 0, ErrMalformedPayload
	}
	return uint8(v), nil
}

func encodeRGB(c RGB, dst []byte) []byte {
	dst = strconv.AppendUint(dst, uint64(c.R), 10)
	dst = append(dst, colorSeparator)
	dst = strconv.AppendUint(dst, uint64(c.G), 10)
	dst = append(dst, colorSeparator)
	return strconv.AppendUint(dst, uint64(c.B), 10)
}

// decodeRGB splits p at its first and last separator. Input without two
// distinct separators, or with a component that is not a 0-255 decimal, is
// rejected rather than decoded to arbitrary values.
func decodeRGB(p []byte) (RGB, error) {
	first := bytes.IndexByte(p, colorSeparator)
	last := bytes.LastIndexByte(p, colorSeparator)
	if first < 0 || first == last {
		return RGB{}, fmt.Errorf("%w: %q is not r,g,b", ErrMalformedPayload, p)
	}
	r, err := parseComponent(p[:first])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: red component in %q", ErrMalformedPayload, p)
	}
	g, err := parseComponent(p[first+1 : last])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: green component in %q", ErrMalformedPayload, p)
	}
	b, err := parseComponent(p[last+1:])
	if err != nil {
		return RGB{}, fmt.Errorf("%w: blue component in %q", ErrMalformedPayload, p)
	}
	return RGB{R: r, G: g, B: b}, nil
}

func encodeString(v string, dst []byte) []byte {
	return append(dst, v...)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
