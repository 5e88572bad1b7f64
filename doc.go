// Package resp implements encoding and decoding of the Redis RESP protocol.
//
// The package offers two levels of API. The low level Reader and Writer types deal with
// individual protocol elements (simple strings, errors, integers, bulk strings and array
// headers) and avoid any validation that would slow down reading / writing. On top of that,
// the Value type models a complete RESP value tree and can be encoded and decoded in one
// call via Marshal, Unmarshal and the ReadValue / WriteValue methods.
//
// All structs can be reused via the corresponding Reset method and duplex connections are
// supported using a ReaderWriter type that wraps a Reader and a Writer in a single
// allocation.
package resp
