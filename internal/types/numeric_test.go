package types

import "testing"

func TestWiden(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	tests := []struct {
		name string
		a, b TypeID
		want TypeID
	}{
		{"int8+int32", b.Int8, b.Int32, b.Int32},
		{"int64+int16", b.Int64, b.Int16, b.Int64},
		{"int16+float", b.Int16, b.Float32, b.Float32},
		{"int32+float", b.Int32, b.Float32, b.Float64},
		{"float+double", b.Float32, b.Float64, b.Float64},
		{"int32+decimal", b.Int32, in.Decimal(5, 2), in.Decimal(12, 2)},
		{"decimal+decimal", in.Decimal(10, 4), in.Decimal(8, 1), in.Decimal(11, 4)},
		{"double+decimal", b.Float64, in.Decimal(5, 2), b.Float64},
		{"null+int8", b.Null, b.Int8, b.Int8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := in.Widen(tt.a, tt.b)
			if !ok || got != tt.want {
				t.Fatalf("Widen = %s (%v), want %s", Label(in, got), ok, Label(in, tt.want))
			}
		})
	}
	if _, ok := in.Widen(b.String, b.Int8); ok {
		t.Fatalf("string is not numeric")
	}
}

func TestAssignable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	tests := []struct {
		name     string
		src, dst TypeID
		want     bool
	}{
		{"narrow int", b.Int32, b.Int8, false},
		{"wide int", b.Int8, b.Int64, true},
		{"int to decimal", b.Int16, in.Decimal(7, 2), true},
		{"int64 to small decimal", b.Int64, in.Decimal(10, 0), false},
		{"decimal scale grows", in.Decimal(5, 2), in.Decimal(6, 3), true},
		{"decimal scale shrinks", in.Decimal(5, 3), in.Decimal(5, 2), false},
		{"bounded string", in.String(10), in.String(20), true},
		{"unbounded into bounded", b.String, in.String(20), false},
		{"null anywhere", b.Null, b.Date, true},
		{"bool to string", b.Bool, b.String, false},
		{"list elem", in.List(b.Int8), in.List(b.Int32), true},
	}
	for _, tt := range tests {
		if got := in.Assignable(tt.src, tt.dst); got != tt.want {
			t.Errorf("%s: Assignable(%s, %s) = %v", tt.name, Label(in, tt.src), Label(in, tt.dst), got)
		}
	}
}

func TestCommonOrderable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if got, ok := in.CommonOrderable(b.Int8, b.Int64); !ok || got != b.Int64 {
		t.Fatalf("numeric bounds must widen")
	}
	if got, ok := in.CommonOrderable(b.Date, b.Timestamp); !ok || got != b.Timestamp {
		t.Fatalf("date and timestamp order as timestamp")
	}
	if _, ok := in.CommonOrderable(b.Bool, b.Bool); ok {
		t.Fatalf("bool is not orderable")
	}
	if _, ok := in.CommonOrderable(b.String, b.Int32); ok {
		t.Fatalf("string and int have no common order")
	}
}
