// Package executor runs validated GraphQL documents breadth first, so that
// related lookups can be batched.
//
// Fields are either sync or async (schema.Field.Async). Sync fields are read
// off the parent value through Runtime.ResolveSync and completed in place.
// Async fields are queued while a depth is expanded, and every queued field
// of that depth goes to the runtime in one Runtime.ResolveBatch call. A
// response whose async fields nest d levels deep costs exactly d batches.
//
// Root mutation fields are sync in practice: the root selection set is
// expanded in document order, so each mutation sees the effects of the one
// before it.
//
// A failed field is null in the response and its error carries the response
// path. When the field is Non-Null the null moves up to the nearest nullable
// position, which is data itself for a Non-Null root field. Batched work
// below a nulled position is dropped before it reaches the runtime.
//
// Arguments reach the runtime coerced. An omitted argument has no key in the
// args map; an explicit null is a key holding nil. An argument bound to a
// variable the request left out counts as omitted. Int, String and Boolean
// are the supported input types.
package executor
