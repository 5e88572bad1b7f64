package resp

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Value models a single RESP value of any of the five types, including whole array trees.
//
// The zero Value is not a valid RESP value; use the constructor functions to build one.
// Values are immutable once constructed, though byte slice payloads are not copied and must
// not be modified by the caller while the Value is in use.
type Value struct {
	typ   Type
	str   string
	num   int64
	bulk  []byte
	elems []Value
	null  bool
}

// SimpleString returns a Value holding the given text as a RESP simple string.
//
// The content is not validated. Encoding fails if it contains CR or LF.
func SimpleString(s string) Value {
	return Value{typ: TypeSimpleString, str: s}
}

// Error returns a Value holding the given text as a RESP error.
//
// The content is not validated. Encoding fails if it contains CR or LF.
func Error(s string) Value {
	return Value{typ: TypeError, str: s}
}

// Integer returns a Value holding the given signed 64-bit integer.
func Integer(n int64) Value {
	return Value{typ: TypeInteger, num: n}
}

// IntegerFromUint returns an integer Value for the given unsigned value.
//
// Values above the maximum signed 64-bit integer can not be represented in RESP and fail
// with ErrIntegerOutOfRange.
func IntegerFromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, ErrIntegerOutOfRange
	}
	return Integer(int64(u)), nil
}

// BulkString returns a Value holding the given bytes as a RESP bulk string.
//
// A nil slice yields the null bulk string, same as NullBulkString. An empty non-nil slice
// yields a present, empty bulk string, which encodes differently from the null one.
func BulkString(b []byte) Value {
	if b == nil {
		return NullBulkString()
	}
	return Value{typ: TypeBulkString, bulk: b}
}

// NullBulkString returns the null bulk string Value.
func NullBulkString() Value {
	return Value{typ: TypeBulkString, null: true}
}

// Array returns a Value holding the given elements as a RESP array.
//
// Elements may mix types freely and may themselves be arrays. Array() without arguments
// yields a present, empty array, which encodes differently from NullArray.
func Array(elems ...Value) Value {
	return Value{typ: TypeArray, elems: elems}
}

// NullArray returns the null array Value.
func NullArray() Value {
	return Value{typ: TypeArray, null: true}
}

// Type returns the RESP type of the value. For the zero Value this is TypeInvalid.
func (v Value) Type() Type {
	return v.typ
}

// IsNull reports whether v is the null bulk string or the null array.
func (v Value) IsNull() bool {
	return v.null
}

// Text returns the text content of a simple string or error value.
func (v Value) Text() string {
	return v.str
}

// Int returns the integer content of an integer value.
func (v Value) Int() int64 {
	return v.num
}

// Bytes returns the payload of a bulk string value. It is nil for the null bulk string.
func (v Value) Bytes() []byte {
	return v.bulk
}

// Elems returns the elements of an array value. It is nil for the null array.
func (v Value) Elems() []Value {
	return v.elems
}

// Equal reports whether v and other are structurally equal, comparing types and payloads
// and recursing into arrays. Null and empty bulk strings or arrays are not equal.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ || v.null != other.null {
		return false
	}

	switch v.typ {
	case TypeSimpleString, TypeError:
		return v.str == other.str
	case TypeInteger:
		return v.num == other.num
	case TypeBulkString:
		return v.null || bytes.Equal(v.bulk, other.bulk)
	case TypeArray:
		if v.null {
			return true
		}
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	}

	return true
}

// String returns a human-readable rendering of the value for logs and test failures. The
// result is not valid RESP; use Marshal for the wire representation.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.typ {
	case TypeSimpleString:
		sb.WriteString(strconv.Quote(v.str))
	case TypeError:
		sb.WriteString("error(")
		sb.WriteString(strconv.Quote(v.str))
		sb.WriteByte(')')
	case TypeInteger:
		sb.WriteString(strconv.FormatInt(v.num, 10))
	case TypeBulkString:
		if v.null {
			sb.WriteString("null")
			return
		}
		sb.WriteString(strconv.Quote(string(v.bulk)))
	case TypeArray:
		if v.null {
			sb.WriteString("null")
			return
		}
		sb.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("invalid")
	}
}
