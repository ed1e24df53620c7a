package value

import "strconv"

// Stringify implements §4.4's stringification rule used when a pipeline
// action's result is emitted as text: bool -> true/false; integer/float ->
// shortest round-trippable base-10 form; char -> its text; string -> as-is;
// absent -> empty string; sequence/map/record -> a fixed diagnostic form
// (Open Question (c): "<kind N>" where N is length/field-count), since the
// source leaves this case unspecified.
func Stringify(v Value) string {
	switch v.kind {
	case Absent:
		return ""
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Uint:
		return strconv.FormatUint(v.u, 10)
	case Float:
		bits := v.bits
		if bits == 0 {
			bits = 64
		}
		return strconv.FormatFloat(v.f, 'g', -1, int(bits))
	case Char:
		return string(v.ch)
	case String:
		return v.str
	case Slice:
		return "<slice " + strconv.Itoa(len(v.slice)) + ">"
	case Map:
		n := 0
		if v.m != nil {
			n = v.m.Len()
		}
		return "<map " + strconv.Itoa(n) + ">"
	case Record:
		return "<record " + strconv.Itoa(len(v.rec.Fields)) + ">"
	case Func:
		return "<func>"
	default:
		return ""
	}
}
