package log

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

type fieldKind uint8

const (
	kindBool fieldKind = iota
	kindString
	kindHex
	kindInt
	kindUint
	kindFloat
	kindError
	kindDuration
	kindStringer
	kindBlob
	numKinds
)

// field is a tagged log value. Numeric kinds (bool included) are stored in
// num so that adding one to an entry doesn't allocate.
type field struct {
	key   string
	kind  fieldKind
	width uint8 // hex digits, for kindHex

	num  uint64
	flt  float64
	str  string
	val  any // error or fmt.Stringer
	blob []byte
}

var formatters = [numKinds]func(*field) string{
	kindBool:   func(f *field) string { return strconv.FormatBool(f.num != 0) },
	kindString: func(f *field) string { return f.str },
	kindHex: func(f *field) string {
		s := strconv.FormatUint(f.num, 16)
		for len(s) < int(f.width) {
			s = "0" + s
		}
		return s
	},
	kindInt:      func(f *field) string { return strconv.FormatInt(int64(f.num), 10) },
	kindUint:     func(f *field) string { return strconv.FormatUint(f.num, 10) },
	kindFloat:    func(f *field) string { return strconv.FormatFloat(f.flt, 'f', -1, 64) },
	kindDuration: func(f *field) string { return time.Duration(f.num).String() },
	kindError: func(f *field) string {
		if f.val == nil {
			return "<nil>"
		}
		return f.val.(error).Error()
	},
	kindStringer: func(f *field) string { return f.val.(fmt.Stringer).String() },
	kindBlob:     func(f *field) string { return hex.Dump(f.blob) },
}

func (f *field) format() string {
	if f.kind >= numKinds {
		return ""
	}
	return formatters[f.kind](f)
}

func boolField(key string, b bool) field {
	f := field{key: key, kind: kindBool}
	if b {
		f.num = 1
	}
	return f
}

func hexField(key string, v uint64, width uint8) field {
	return field{key: key, kind: kindHex, num: v, width: width}
}

func numField(key string, kind fieldKind, v uint64) field {
	return field{key: key, kind: kind, num: v}
}
