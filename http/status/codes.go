package status

// Code is an HTTP response status code.
type Code uint16

// The codes below are the ones the client treats specially. Other codes are still
// represented by Code, just without a name.
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2

	OK        Code = 200 // RFC 9110, 15.3.1
	NoContent Code = 204 // RFC 9110, 15.3.5

	NotModified Code = 304 // RFC 9110, 15.4.5

	BadRequest Code = 400 // RFC 9110, 15.5.1
	NotFound   Code = 404 // RFC 9110, 15.5.5

	InternalServerError Code = 500 // RFC 9110, 15.6.1
)

const (
	minCode Code = 100
	maxCode Code = 599
)

// Valid reports whether the code lies within the 100-599 range.
func (c Code) Valid() bool {
	return c >= minCode && c <= maxCode
}

// Class returns the first digit of the code, e.g. 2 for 204.
func (c Code) Class() int {
	return int(c / 100)
}

// Informational reports whether the code is 1xx.
func (c Code) Informational() bool {
	return c.Class() == 1
}

// AllowsBody reports whether a response with the code may carry a body at all
// (RFC 9110, 6.4.1).
func (c Code) AllowsBody() bool {
	return !c.Informational() && c != NoContent && c != NotModified
}
