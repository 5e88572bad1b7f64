package resp

import (
	"bufio"
	"io"
	"math"
)

// DefaultMaxDepth is the array nesting limit used by ReadValue when MaxDepth is zero.
const DefaultMaxDepth = 128

// Reader wraps an io.Reader and provides methods for reading the RESP protocol.
type Reader struct {
	br *bufio.Reader

	// ownbr holds a *bufio.Reader that is reused when calling Reset. This is used in cases the io.Reader given to
	// Reset is already a *bufio.Reader to avoid reusing the user given *bufio.Reader when calling Reset.
	ownbr *bufio.Reader

	// MaxDepth bounds the array nesting accepted by ReadValue. If zero, DefaultMaxDepth is
	// used. MaxDepth is kept across calls to Reset.
	MaxDepth int
}

// NewReader returns a *Reader that uses the given io.Reader for reads.
//
// See Reset for more information on buffering on the given io.Reader works.
func NewReader(r io.Reader) *Reader {
	var rr Reader
	rr.Reset(r)
	return &rr
}

var _ io.Reader = (*Reader)(nil)

// Reset sets the underlying io.Reader to r and resets all internal state.
//
// If the given io.Reader is an *bufio.Reader it is used directly without additional buffering.
func (rr *Reader) Reset(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		rr.br = br
		return
	}

	if rr.ownbr == nil {
		rr.ownbr = bufio.NewReader(r)
	} else {
		rr.ownbr.Reset(r)
	}

	rr.br = rr.ownbr
}

// Peek looks at the next byte in the underlying reader and returns the Type of the response.
func (rr *Reader) Peek() (Type, error) {
	b, err := rr.br.Peek(1)
	if err != nil {
		return TypeInvalid, err
	}

	return types[b[0]], nil
}

func (rr *Reader) expect(t Type) error {
	g, err := rr.Peek()
	if err != nil {
		return err
	}
	if g != t {
		return ErrUnexpectedType
	}
	_, err = rr.br.Discard(1)
	return err
}

// readNumberLine reads a line holding a signed base-10 integer, rejecting values outside
// the signed 64-bit range with ErrIntegerOutOfRange.
func (rr *Reader) readNumberLine() (int64, error) {
	var n uint64
	var neg, digits bool

loop:
	for i := 0; ; i++ {
		b, err := rr.br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}

		switch {
		case b == '-' && i == 0:
			neg = true
		case b >= '0' && b <= '9':
			d := uint64(b - '0')
			if n > (math.MaxUint64-d)/10 {
				return 0, ErrIntegerOutOfRange
			}
			n = n*10 + d
			digits = true
		case b == '\r':
			b1, err := rr.br.ReadByte()
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			if err != nil {
				return 0, err
			}

			if b1 == '\n' {
				break loop
			}

			_ = rr.br.UnreadByte()
			_ = rr.br.UnreadByte()
			return 0, ErrUnexpectedEOL
		case b == '\n':
			_ = rr.br.UnreadByte()
			return 0, ErrUnexpectedEOL
		default:
			_ = rr.br.UnreadByte()
			return 0, ErrInvalidInteger
		}
	}

	if !digits {
		return 0, ErrInvalidInteger
	}

	if neg {
		if n > uint64(math.MaxInt64)+1 {
			return 0, ErrIntegerOutOfRange
		}
		if n == uint64(math.MaxInt64)+1 {
			return math.MinInt64, nil
		}
		return -int64(n), nil
	}

	if n > uint64(math.MaxInt64) {
		return 0, ErrIntegerOutOfRange
	}
	return int64(n), nil
}

func (rr *Reader) readLine(dst []byte) ([]byte, error) {
	for {
		line, err := rr.br.ReadSlice('\n')
		if err != nil && err != bufio.ErrBufferFull {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		dst = append(dst, line...)
		if line[len(line)-1] == '\n' {
			break
		}
	}
	return removeEOLMarker(dst)
}

func (rr *Reader) readLineN(dst []byte, n int) ([]byte, error) {
	n += len("\r\n")
	// grow incrementally past this so a hostile length prefix can not force a huge
	// allocation before any payload bytes were actually read
	if n <= 1<<16 {
		dst = ensureSpace(dst, n)
	}
	for n > 0 {
		line, err := rr.br.Peek(n)
		if err != nil && err != bufio.ErrBufferFull {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		dst = append(dst, line...)
		n -= len(line)
		if _, err := rr.br.Discard(len(line)); err != nil {
			return nil, err
		}
	}
	return removeEOLMarker(dst)
}

func ensureSpace(b []byte, n int) []byte {
	if m := cap(b) - len(b); m < n {
		newb := make([]byte, len(b), len(b)+n)
		copy(newb, b)
		return newb
	}
	return b
}

func removeEOLMarker(b []byte) ([]byte, error) {
	if len(b) < 2 || b[len(b)-2] != '\r' || b[len(b)-1] != '\n' {
		return nil, ErrUnexpectedEOL
	}
	return b[:len(b)-2], nil
}

// Read reads raw data from the underlying io.Reader into dst.
//
// It implements the io.Reader interface.
func (rr *Reader) Read(dst []byte) (n int, err error) {
	return rr.br.Read(dst)
}

// ReadArrayHeader reads an array header, returning the array length.
//
// If the next type in the response is not an array, ErrUnexpectedType is returned.
func (rr *Reader) ReadArrayHeader() (int64, error) {
	if err := rr.expect(TypeArray); err != nil {
		return 0, err
	}
	n, err := rr.readNumberLine()
	if n < -1 || err == ErrInvalidInteger {
		n, err = 0, ErrInvalidArrayLength
	}
	return n, err
}

// ReadBulkStringHeader reads a bulk string header, returning the length, without reading the bulk string itself.
//
// If the next type in the response is not a bulk string, ErrUnexpectedType is returned.
func (rr *Reader) ReadBulkStringHeader() (int64, error) {
	if err := rr.expect(TypeBulkString); err != nil {
		return 0, err
	}
	n, err := rr.readNumberLine()
	if n < -1 || err == ErrInvalidInteger {
		n, err = 0, ErrInvalidBulkStringLength
	}
	return n, err
}

// ReadBulkString reads a bulk string into the byte slice dst and returns the modified slice.
//
// For null bulk strings the returned slice will always be nil.
// For non-null bulk strings the returned slice will only be nil if there was an error.
//
// If the next type in the response is not a bulk string, ErrUnexpectedType is returned.
func (rr *Reader) ReadBulkString(dst []byte) ([]byte, error) {
	n, err := rr.ReadBulkStringHeader()
	if n == -1 || err != nil {
		return nil, err
	}
	if int64(int(n)) != n {
		return nil, ErrInvalidBulkStringLength
	}
	return rr.readLineN(dst, int(n))
}

// ReadError reads an error into the byte slice dst and returns the modified slice.
//
// If the next type in the response is not an error, ErrUnexpectedType is returned.
func (rr *Reader) ReadError(dst []byte) ([]byte, error) {
	if err := rr.expect(TypeError); err != nil {
		return nil, err
	}
	return rr.readLine(dst)
}

// ReadInteger reads a single RESP integer.
//
// If the next type in the response is not an integer, ErrUnexpectedType is returned.
func (rr *Reader) ReadInteger() (int64, error) {
	if err := rr.expect(TypeInteger); err != nil {
		return 0, err
	}
	return rr.readNumberLine()
}

// ReadSimpleString reads a simple string into the byte slice dst and returns the modified slice.
//
// If the next type in the response is not a simple string, ErrUnexpectedType is returned.
func (rr *Reader) ReadSimpleString(dst []byte) ([]byte, error) {
	if err := rr.expect(TypeSimpleString); err != nil {
		return nil, err
	}
	return rr.readLine(dst)
}

// ReadValue reads exactly one RESP value of any type, recursing into arrays.
//
// Unknown type tags fail with ErrSyntax. Negative bulk string and array lengths yield the
// corresponding null value. Input that ends before the value is complete fails with io.EOF
// if nothing was consumed yet and io.ErrUnexpectedEOF otherwise. Arrays nested deeper than
// MaxDepth fail with ErrMaxDepthExceeded.
//
// ReadValue does not look past the value it decodes, so it can be called repeatedly against
// one persistent source. Use Unmarshal to additionally enforce single-value framing.
func (rr *Reader) ReadValue() (Value, error) {
	return rr.readValue(0)
}

func (rr *Reader) readValue(depth int) (Value, error) {
	tag, err := rr.br.ReadByte()
	if err != nil {
		if err == io.EOF && depth > 0 {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch types[tag] {
	case TypeSimpleString:
		line, err := rr.readLine(nil)
		if err != nil {
			return Value{}, err
		}
		return SimpleString(string(line)), nil
	case TypeError:
		line, err := rr.readLine(nil)
		if err != nil {
			return Value{}, err
		}
		return Error(string(line)), nil
	case TypeInteger:
		n, err := rr.readNumberLine()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case TypeBulkString:
		n, err := rr.readNumberLine()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return NullBulkString(), nil
		}
		if int64(int(n)) != n {
			return Value{}, ErrInvalidBulkStringLength
		}
		b, err := rr.readLineN(nil, int(n))
		if err != nil {
			return Value{}, err
		}
		return BulkString(b), nil
	case TypeArray:
		n, err := rr.readNumberLine()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return NullArray(), nil
		}
		maxDepth := rr.MaxDepth
		if maxDepth <= 0 {
			maxDepth = DefaultMaxDepth
		}
		if depth+1 > maxDepth {
			return Value{}, ErrMaxDepthExceeded
		}
		elems := make([]Value, 0, arrayCap(n))
		for i := int64(0); i < n; i++ {
			e, err := rr.readValue(depth + 1)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Array(elems...), nil
	default:
		return Value{}, ErrSyntax
	}
}

// arrayCap limits the initial element allocation so a hostile length prefix can not force a
// huge allocation before any elements were actually read.
func arrayCap(n int64) int {
	if n > 1024 {
		return 1024
	}
	return int(n)
}
