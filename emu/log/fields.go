package log

import (
	"fmt"
	"strconv"
)

type fieldKind uint8

const (
	kindBool fieldKind = iota + 1
	kindString
	kindHex8
	kindHex16
	kindInt
	kindUint
	kindError
	kindStringer
)

// A ZField is a key and a value stored without boxing, so that building a
// field doesn't allocate. The value is rendered when the entry is emitted.
type ZField struct {
	Key string

	kind  fieldKind
	num   uint64 // bool, integers
	str   string
	iface any // error, fmt.Stringer
}

// Value returns the field value as passed to logrus: numbers and booleans
// keep their type, hexadecimal values are rendered as strings.
func (f *ZField) Value() any {
	switch f.kind {
	case kindBool:
		return f.num != 0
	case kindString:
		return f.str
	case kindHex8:
		return hex(f.num, 2)
	case kindHex16:
		return hex(f.num, 4)
	case kindInt:
		return int64(f.num)
	case kindUint:
		return f.num
	case kindError:
		if f.iface == nil {
			return "<nil>"
		}
		return f.iface.(error).Error()
	case kindStringer:
		return f.iface.(fmt.Stringer).String()
	}
	return nil
}

// hex formats v in lowercase hexadecimal, zero padded to width digits.
func hex(v uint64, width int) string {
	var buf [16]byte
	s := strconv.AppendUint(buf[:0], v, 16)
	for len(s) < width {
		s = append([]byte{'0'}, s...)
	}
	return string(s)
}
