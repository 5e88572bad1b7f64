package resp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	// ErrSyntax is returned when decoding input that does not follow the RESP grammar, like
	// an unknown type tag or a malformed length. More specific errors wrap ErrSyntax and can
	// be matched against it using errors.Is.
	ErrSyntax = errors.New("invalid RESP syntax")

	// ErrInvalidArrayLength is returned when reading or writing an array header with an invalid length.
	ErrInvalidArrayLength = fmt.Errorf("%w: array length must be >= -1", ErrSyntax)

	// ErrInvalidBulkStringLength is returned when reading or writing a bulk string with an invalid length.
	ErrInvalidBulkStringLength = fmt.Errorf("%w: bulk string length must be >= -1", ErrSyntax)

	// ErrInvalidInteger is returned when decoding an invalid integer.
	ErrInvalidInteger = fmt.Errorf("%w: invalid integer", ErrSyntax)

	// ErrUnexpectedEOL is returned when reading a line that does not end in \r\n.
	ErrUnexpectedEOL = fmt.Errorf("%w: missing or invalid EOL", ErrSyntax)

	// ErrUnexpectedType is returned by Reader when encountering an unknown type.
	ErrUnexpectedType = errors.New("encountered unexpected RESP type")

	// ErrIntegerOutOfRange is returned when an integer falls outside the signed 64-bit range.
	ErrIntegerOutOfRange = errors.New("integer out of signed 64-bit range")

	// ErrUnsupportedType is returned when encoding a Value that is not one of the five RESP types.
	ErrUnsupportedType = errors.New("unsupported RESP type")

	// ErrInvalidUTF8 is returned by MarshalString when a value contains text that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("text content is not valid UTF-8")

	// ErrInvalidLineContent is returned when encoding a simple string or error that contains
	// a CR or LF byte, which can not be represented in the line-oriented RESP types.
	ErrInvalidLineContent = errors.New("simple string content must not contain CR or LF")

	// ErrTrailingBytes is returned by Unmarshal when input bytes remain after a complete value.
	ErrTrailingBytes = errors.New("trailing bytes after complete value")

	// ErrMaxDepthExceeded is returned when decoding arrays nested deeper than the Reader allows.
	ErrMaxDepthExceeded = errors.New("array nesting exceeds maximum depth")
)

// Type is an enum of the known RESP types with the values of the constants being the single-byte prefix characters.
type Type byte

const (
	// TypeInvalid is returned by Reader when encountering unknown or invalid types.
	TypeInvalid Type = 0
	// TypeArray signifies a RESP array.
	TypeArray Type = '*'
	// TypeBulkString signifies a RESP bulk string.
	TypeBulkString Type = '$'
	// TypeError signifies an error string.
	TypeError Type = '-'
	// TypeInteger signifies a integer.
	TypeInteger Type = ':'
	// TypeSimpleString signifies a simple string.
	TypeSimpleString Type = '+'
)

var _ fmt.Stringer = TypeInvalid

var types = [256]Type{
	TypeArray:        TypeArray,
	TypeBulkString:   TypeBulkString,
	TypeError:        TypeError,
	TypeInteger:      TypeInteger,
	TypeSimpleString: TypeSimpleString,
}

// String implements the fmt.Stringer interface.
func (t Type) String() string {
	return string(t)
}

// Marshal encodes the given Value into its RESP wire representation.
//
// Encoding a Value that is not one of the five RESP types fails with ErrUnsupportedType.
// Simple strings and errors containing CR or LF fail with ErrInvalidLineContent.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteValue(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalString encodes the given Value like Marshal, returning the result as a string.
//
// If any text or bulk string payload in the value is not valid UTF-8, MarshalString fails
// with ErrInvalidUTF8. Binary payloads must use Marshal instead.
func MarshalString(v Value) (string, error) {
	if !validText(v) {
		return "", ErrInvalidUTF8
	}
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func validText(v Value) bool {
	switch v.typ {
	case TypeSimpleString, TypeError:
		return utf8.ValidString(v.str)
	case TypeBulkString:
		return v.null || utf8.Valid(v.bulk)
	case TypeArray:
		for _, e := range v.elems {
			if !validText(e) {
				return false
			}
		}
	}
	return true
}

// Unmarshal decodes exactly one RESP value from the given bytes.
//
// If any input remains after the value, Unmarshal fails with ErrTrailingBytes. Callers that
// need to decode a sequence of values from one source should use a Reader and call ReadValue
// repeatedly instead.
func Unmarshal(data []byte) (Value, error) {
	r := NewReader(bytes.NewReader(data))
	v, err := r.ReadValue()
	if err != nil {
		return Value{}, err
	}
	if _, err := r.br.ReadByte(); err != io.EOF {
		return Value{}, ErrTrailingBytes
	}
	return v, nil
}

// ReaderWriter embeds a Reader and a Writer in a single allocation for an io.ReadWriter.
//
// A single Reader and a single Writer method can be called concurrently, given the Read and Write methods of the
// underlying io.ReadWriter are safe for concurrent use.
type ReaderWriter struct {
	Reader
	Writer
}

// NewReaderWriter returns a new ReaderWriter that uses the given io.ReadWriter.
func NewReaderWriter(rw io.ReadWriter) *ReaderWriter {
	var rrw ReaderWriter
	rrw.Reset(rw)
	return &rrw
}

// Reset resets the embedded Reader and Writer to use the given io.ReadWriter.
//
// Reset must not be called concurrently with any other method
func (rrw *ReaderWriter) Reset(rw io.ReadWriter) {
	rrw.Reader.Reset(rw)
	rrw.Writer.Reset(rw)
}
