package types

import (
	"fmt"
	"strings"
)

// maxLabelDepth prevents infinite recursion through recursive types.
const maxLabelDepth = 8

// Label renders a type the way users write it.
func Label(in *Interner, id TypeID) string {
	return labelDepth(in, id, 0)
}

func labelDepth(in *Interner, id TypeID, depth int) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	if depth > maxLabelDepth {
		return "..."
	}
	switch t.Kind {
	case KindAny:
		return "ANY"
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strings.ToUpper(t.Kind.String())
	case KindFloat32:
		return "FLOAT"
	case KindFloat64:
		return "DOUBLE"
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case KindString, KindBytes:
		base := strings.ToUpper(t.Kind.String())
		if t.Length > 0 {
			return fmt.Sprintf("%s(%d)", base, t.Length)
		}
		return base
	case KindDate:
		return "DATE"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindList:
		return "LIST<" + labelDepth(in, t.Elem, depth+1) + ">"
	case KindMap:
		return "MAP<" + labelDepth(in, t.Key, depth+1) + ", " + labelDepth(in, t.Elem, depth+1) + ">"
	case KindStruct:
		if info, ok := in.StructInfo(id); ok {
			return info.Name
		}
	case KindUnion:
		if info, ok := in.UnionInfo(id); ok {
			return info.Name
		}
	case KindEnum:
		if info, ok := in.EnumInfo(id); ok {
			return info.Name
		}
	case KindScalar:
		if info, ok := in.ScalarInfo(id); ok {
			return info.Name
		}
	}
	return t.Kind.String()
}
