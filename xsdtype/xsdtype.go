// Package xsdtype maps the closed set of host Go primitive types to XSD
// class names and the JSON-LD literal shapes TerminusDB expects on the wire.
package xsdtype

import (
	"fmt"
	"math"
)

// XSD class name constants. Only the classes the Go host types cover are
// represented; the server-side catalog is larger, but everything the codec
// emits comes from this table.
const (
	String    = "xsd:string"
	Boolean   = "xsd:boolean"
	Decimal   = "xsd:decimal"
	Integer   = "xsd:integer"
	DateTime  = "xsd:dateTime"
	Date      = "xsd:date"
	Time      = "xsd:time"
	AnyURI    = "xsd:anyURI"
	Byte      = "xsd:byte"
	Short     = "xsd:short"
	Int       = "xsd:int"
	Long      = "xsd:long"
	UnsignedByte  = "xsd:unsignedByte"
	UnsignedShort = "xsd:unsignedShort"
	UnsignedInt   = "xsd:unsignedInt"
	UnsignedLong  = "xsd:unsignedLong"
)

// literalNeedsType is the set of classes whose JSON-LD literal must be
// wrapped as {"@type": class, "@value": value} rather than emitted as a
// bare JSON scalar.
var literalNeedsType = map[string]bool{
	Decimal:       true,
	DateTime:      true,
	Time:          true,
	Date:          true,
	Integer:       true,
	Byte:          true,
	Short:         true,
	Int:           true,
	Long:          true,
	UnsignedByte:  true,
	UnsignedShort: true,
	UnsignedInt:   true,
	UnsignedLong:  true,
}

// unsignedRanges bounds decode-time range checks for the width-bounded
// integer classes, unsigned and signed.
var unsignedRanges = map[string][2]int64{
	UnsignedByte:  {0, math.MaxUint8},
	UnsignedShort: {0, math.MaxUint16},
	UnsignedInt:   {0, math.MaxUint32},
	Byte:          {math.MinInt8, math.MaxInt8},
	Short:         {math.MinInt16, math.MaxInt16},
	Int:           {math.MinInt32, math.MaxInt32},
}

// NeedsTypedLiteral reports whether class must serialize with an explicit
// {"@type": ..., "@value": ...} wrapper rather than a bare JSON scalar.
func NeedsTypedLiteral(class string) bool {
	return literalNeedsType[class]
}

// IsPrimitive reports whether class is in the "xsd:" namespace.
func IsPrimitive(class string) bool {
	return len(class) > 4 && class[:4] == "xsd:"
}

// RangeError is returned by CheckRange when a decoded integer falls outside
// the bounds a width-constrained XSD class allows.
type RangeError struct {
	Class string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d out of range for %s (expected [%d, %d])", e.Value, e.Class, e.Min, e.Max)
}

// CheckRange validates value against the declared bounds of class, if any.
// Classes with no declared bound (xsd:long, xsd:unsignedLong, xsd:integer)
// are accepted as-is; Go's int64 already constrains them.
func CheckRange(class string, value int64) error {
	bounds, ok := unsignedRanges[class]
	if !ok {
		return nil
	}
	if value < bounds[0] || value > bounds[1] {
		return &RangeError{Class: class, Value: value, Min: bounds[0], Max: bounds[1]}
	}
	return nil
}

// ClassForKind returns the XSD class name for a host primitive kind string
// ("string", "bool", "int64", "float64", "time.Time", "time.Date",
// "time.TimeOfDay", "url.URL"). The schema package passes a field's
// reflect.Kind name. ok is false for kinds outside the closed primitive
// catalog.
func ClassForKind(kind string) (class string, ok bool) {
	switch kind {
	case "string":
		return String, true
	case "bool":
		return Boolean, true
	case "int", "int64", "int32", "int16", "int8":
		return Integer, true
	case "uint", "uint64", "uint32":
		return UnsignedLong, true
	case "uint8":
		return UnsignedByte, true
	case "uint16":
		return UnsignedShort, true
	case "float32", "float64":
		return Decimal, true
	case "time.Time":
		return DateTime, true
	case "time.Date":
		return Date, true
	case "time.TimeOfDay":
		return Time, true
	case "url.URL":
		return AnyURI, true
	default:
		return "", false
	}
}
