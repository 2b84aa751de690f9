package typesys

import (
	"fmt"
	"hash/fnv"
)

// Built-in scalar TypeMetas, registered once at package init so that
// callers never need to construct Ops by hand for the common cases.
var (
	Int     *TypeMeta
	Float64 *TypeMeta
	Bool    *TypeMeta
	String  *TypeMeta
)

func init() {
	Int = global.RegisterScalar("int", sizeOf[int64](), sizeOf[int64](),
		FlagHashable|FlagEquatable|FlagComparable|FlagTriviallyCopyable|FlagBufferCompatible,
		Ops{
			Equals: func(a, b any) bool { return a.(int64) == b.(int64) },
			Less:   func(a, b any) bool { return a.(int64) < b.(int64) },
			Hash:   func(v any) uint64 { return uint64(v.(int64)) },
			ToString: func(v any) string { return fmt.Sprintf("%d", v.(int64)) },
		})

	Float64 = global.RegisterScalar("float64", sizeOf[float64](), sizeOf[float64](),
		FlagComparable|FlagTriviallyCopyable|FlagBufferCompatible,
		Ops{
			Equals: func(a, b any) bool { return a.(float64) == b.(float64) },
			Less:   func(a, b any) bool { return a.(float64) < b.(float64) },
			ToString: func(v any) string { return fmt.Sprintf("%g", v.(float64)) },
		})

	Bool = global.RegisterScalar("bool", sizeOf[bool](), sizeOf[bool](),
		FlagHashable|FlagEquatable|FlagTriviallyCopyable|FlagBufferCompatible,
		Ops{
			Equals: func(a, b any) bool { return a.(bool) == b.(bool) },
			Hash:   func(v any) uint64 { if v.(bool) { return 1 }; return 0 },
			ToString: func(v any) string { return fmt.Sprintf("%t", v.(bool)) },
		})

	String = global.RegisterScalar("string", 0, 8,
		FlagHashable|FlagEquatable|FlagComparable,
		Ops{
			Equals: func(a, b any) bool { return a.(string) == b.(string) },
			Less:   func(a, b any) bool { return a.(string) < b.(string) },
			Hash: func(v any) uint64 {
				h := fnv.New64a()
				_, _ = h.Write([]byte(v.(string)))
				return h.Sum64()
			},
			ToString: func(v any) string { return v.(string) },
		})
}
