// Package meta builds self-describing classes at runtime.
//
// A class is declared by creating a Class with NewClass, adding attributes,
// constructors and methods to it, and calling Build. Build synthesizes the
// accessor callables for every attribute (with type validation, visibility
// enforcement and default values) and installs them, together with the
// constructors and methods, into the class's capability table. Generic code
// can then enumerate members through the Class descriptor and invoke them by
// name with Instance.Call or Class.Call without static knowledge of the
// class's shape.
//
// # Callers
//
// Visibility is enforced against an explicit Caller token passed at every
// call site. A Caller is the package identity of the class on whose behalf
// the call is made; Anonymous identifies code outside any class. Generated
// constructors forward the token they received instead of substituting
// their own, so visibility is always judged against the original invoker.
//
// # Concurrency
//
// The engine is single-threaded by design. The process-wide class registry,
// the type registry and class-context attribute cells are mutated without
// locking. Declare and build all classes before sharing them between
// goroutines; after that, concurrent reads of descriptors are safe, but
// concurrent writes to attribute values (class-context cells in particular,
// which are shared by the class and all of its instances) must be
// synchronized by the caller.
//
// # Errors
//
// Every failure is a *errors.MetaError and is routed through the class's
// ErrorHandler before being returned. The default handler returns the error
// unchanged; install one with SetDefaultErrorHandler or ClassSpec to panic
// instead, or to decorate errors for a host convention.
package meta
