package resp

import (
	"io"
	"strconv"
	"strings"
)

// Writer wraps an io.Writer and provides methods for writing the RESP protocol.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns a *Writer that uses the given io.Writer for writes.
func NewWriter(w io.Writer) *Writer {
	var rw Writer
	rw.Reset(w)
	return &rw
}

var _ io.Writer = (*Writer)(nil)

// Reset sets the underlying io.Writer to w and resets all internal state.
func (rw *Writer) Reset(w io.Writer) {
	rw.buf = rw.buf[:0]
	rw.w = w
}

func (rw *Writer) writeBytes(prefix Type, s []byte) (int, error) {
	rw.buf = rw.buf[:0]
	rw.buf = append(rw.buf, byte(prefix))
	rw.buf = append(rw.buf, s...)
	rw.buf = append(rw.buf, '\r', '\n')

	return rw.w.Write(rw.buf)
}

func (rw *Writer) writeNumber(prefix Type, n int64) (int, error) {
	rw.buf = rw.buf[:0]
	rw.buf = append(rw.buf, byte(prefix))
	rw.buf = strconv.AppendInt(rw.buf, n, 10)
	rw.buf = append(rw.buf, '\r', '\n')

	return rw.w.Write(rw.buf)
}

func (rw *Writer) writeString(prefix Type, s string) (int, error) {
	rw.buf = rw.buf[:0]
	rw.buf = append(rw.buf, byte(prefix))
	rw.buf = append(rw.buf, s...)
	rw.buf = append(rw.buf, '\r', '\n')

	return rw.w.Write(rw.buf)
}

// Write allows writing raw data to the underlying io.Writer.
//
// It implements the io.Writer interface.
func (rw *Writer) Write(dst []byte) (int, error) {
	return rw.w.Write(dst)
}

var nilArrayHeaderBytes = []byte("*-1\r\n")

// WriteArrayHeader writes an array header for an array of length n.
//
// If n is < -1, ErrInvalidArrayLength is returned.
func (rw *Writer) WriteArrayHeader(n int64) (int, error) {
	if n < -1 {
		return 0, ErrInvalidArrayLength
	}

	if n == -1 { // fast-path
		return rw.w.Write(nilArrayHeaderBytes)
	}

	return rw.writeNumber(TypeArray, n)
}

var nilBulkStringHeaderBytes = []byte("$-1\r\n")

// WriteBulkStringHeader writes a bulk string header for a bulk string of length n.
//
// If n is < -1, ErrInvalidBulkStringLength is returned.
func (rw *Writer) WriteBulkStringHeader(n int64) (int, error) {
	if n < -1 {
		return 0, ErrInvalidBulkStringLength
	}

	if n == -1 { // fast-path
		return rw.w.Write(nilBulkStringHeaderBytes)
	}

	return rw.writeNumber(TypeBulkString, n)
}

// WriteBulkString writes the string s as bulk string.
//
// If you need to write a null bulk string, use WriteBulkStringBytes instead.
func (rw *Writer) WriteBulkString(s string) (int, error) {
	rw.buf = rw.buf[:0]
	rw.buf = append(rw.buf, byte(TypeBulkString))
	rw.buf = strconv.AppendUint(rw.buf, uint64(len(s)), 10)
	rw.buf = append(rw.buf, '\r', '\n')
	rw.buf = append(rw.buf, s...)
	rw.buf = append(rw.buf, '\r', '\n')

	return rw.w.Write(rw.buf)
}

// WriteBulkStringBytes writes the byte slice s as bulk string. A nil slice is written as
// the null bulk string.
func (rw *Writer) WriteBulkStringBytes(s []byte) (int, error) {
	if s == nil {
		return rw.WriteBulkStringHeader(-1)
	}

	rw.buf = rw.buf[:0]
	rw.buf = append(rw.buf, byte(TypeBulkString))
	rw.buf = strconv.AppendUint(rw.buf, uint64(len(s)), 10)
	rw.buf = append(rw.buf, '\r', '\n')
	rw.buf = append(rw.buf, s...)
	rw.buf = append(rw.buf, '\r', '\n')

	return rw.w.Write(rw.buf)
}

// WriteError writes the string s unvalidated as an error.
func (rw *Writer) WriteError(s string) (int, error) {
	return rw.writeString(TypeError, s)
}

// WriteErrorBytes writes the byte slice s unvalidated as an error.
func (rw *Writer) WriteErrorBytes(s []byte) (int, error) {
	return rw.writeBytes(TypeError, s)
}

// WriteInteger writes the number n as a RESP integer.
func (rw *Writer) WriteInteger(n int64) (int, error) {
	return rw.writeNumber(TypeInteger, n)
}

// WriteSimpleString writes the string s unvalidated as a simple string.
func (rw *Writer) WriteSimpleString(s string) (int, error) {
	return rw.writeString(TypeSimpleString, s)
}

// WriteSimpleStringBytes writes the byte slice s unvalidated as a simple string.
func (rw *Writer) WriteSimpleStringBytes(s []byte) (int, error) {
	return rw.writeBytes(TypeSimpleString, s)
}

// WriteValue writes the given Value, recursing into arrays in order.
//
// A Value that is not one of the five RESP types fails with ErrUnsupportedType, and a
// simple string or error containing CR or LF fails with ErrInvalidLineContent, in both
// cases before any bytes for that value were written. Bytes already written for earlier
// elements of an array are not retracted on error; the caller must discard the sink.
func (rw *Writer) WriteValue(v Value) error {
	switch v.typ {
	case TypeSimpleString, TypeError:
		if strings.ContainsAny(v.str, "\r\n") {
			return ErrInvalidLineContent
		}
		var err error
		if v.typ == TypeSimpleString {
			_, err = rw.WriteSimpleString(v.str)
		} else {
			_, err = rw.WriteError(v.str)
		}
		return err
	case TypeInteger:
		_, err := rw.WriteInteger(v.num)
		return err
	case TypeBulkString:
		if v.null {
			_, err := rw.WriteBulkStringHeader(-1)
			return err
		}
		b := v.bulk
		if b == nil {
			b = []byte{}
		}
		_, err := rw.WriteBulkStringBytes(b)
		return err
	case TypeArray:
		if v.null {
			_, err := rw.WriteArrayHeader(-1)
			return err
		}
		if _, err := rw.WriteArrayHeader(int64(len(v.elems))); err != nil {
			return err
		}
		for _, e := range v.elems {
			if err := rw.WriteValue(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrUnsupportedType
	}
}
