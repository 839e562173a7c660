package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built by chaining typed field setters. All methods
// accept a nil receiver, which is what disabled modules return, so that a
// disabled log statement only costs a nil check per field.
type EntryZ struct {
	mod Module
	lvl Level
	msg string

	zfbuf [maxZFields]field
	zfidx int
}

var entryPool = sync.Pool{New: func() any { return new(EntryZ) }}

func newEntryZ() *EntryZ {
	return entryPool.Get().(*EntryZ)
}

func (z *EntryZ) add(f field) *EntryZ {
	if z == nil {
		return nil
	}
	if z.zfidx < len(z.zfbuf) {
		z.zfbuf[z.zfidx] = f
		z.zfidx++
	}
	return z
}

func (z *EntryZ) Bool(key string, b bool) *EntryZ {
	return z.add(boolField(key, b))
}

func (z *EntryZ) String(key, s string) *EntryZ {
	return z.add(field{key: key, kind: kindString, str: s})
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	return z.add(field{key: key, kind: kindStringer, val: s})
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return z.add(hexField(key, uint64(v), 2))
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return z.add(hexField(key, uint64(v), 4))
}

func (z *EntryZ) Hex32(key string, v uint32) *EntryZ {
	return z.add(hexField(key, uint64(v), 8))
}

func (z *EntryZ) Uint8(key string, v uint8) *EntryZ {
	return z.add(numField(key, kindUint, uint64(v)))
}

func (z *EntryZ) Uint16(key string, v uint16) *EntryZ {
	return z.add(numField(key, kindUint, uint64(v)))
}

func (z *EntryZ) Uint32(key string, v uint32) *EntryZ {
	return z.add(numField(key, kindUint, uint64(v)))
}

func (z *EntryZ) Uint64(key string, v uint64) *EntryZ {
	return z.add(numField(key, kindUint, v))
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	return z.add(numField(key, kindInt, uint64(v)))
}

func (z *EntryZ) Int64(key string, v int64) *EntryZ {
	return z.add(numField(key, kindInt, uint64(v)))
}

func (z *EntryZ) Float64(key string, v float64) *EntryZ {
	return z.add(field{key: key, kind: kindFloat, flt: v})
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	return z.add(numField(key, kindDuration, uint64(d)))
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(field{key: key, kind: kindError, val: err})
}

func (z *EntryZ) Blob(key string, b []byte) *EntryZ {
	return z.add(field{key: key, kind: kindBlob, blob: b})
}

// End emits the entry and releases it. The entry must not be used after End.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].key] = z.zfbuf[i].format()
	}
	entry := std.WithFields(fields)

	switch z.lvl {
	case DebugLevel:
		entry.Debug(z.msg)
	case InfoLevel:
		entry.Info(z.msg)
	case WarnLevel:
		entry.Warn(z.msg)
	case ErrorLevel:
		entry.Error(z.msg)
	case FatalLevel:
		entry.Fatal(z.msg)
	}

	*z = EntryZ{}
	entryPool.Put(z)
}
