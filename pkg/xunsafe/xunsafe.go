// Package xunsafe provides a small set of pointer-arithmetic helpers used by
// [github.com/flier/archiver/pkg/zc] to build zero-copy byte views over the
// binary archive backing's input buffer.
package xunsafe

import (
	"sync"
	"unsafe"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by being an array of [sync.Mutex], which vet's copylocks check
// treats as a lock even at length zero.
type NoCopy [0]sync.Mutex

// Add adds n bytes to p.
func Add(p *byte, n int) *byte {
	return (*byte)(unsafe.Add(unsafe.Pointer(p), n))
}

// Sub computes the byte distance between p1 and p2.
func Sub(p1, p2 *byte) int {
	return int(uintptr(unsafe.Pointer(p1)) - uintptr(unsafe.Pointer(p2)))
}

// NoEscape hides a pointer from escape analysis, preventing it from escaping
// to the heap. This is the same trick used by the Go runtime's own internal
// packages (e.g. strings.Builder).
func NoEscape(p *byte) *byte {
	x := uintptr(unsafe.Pointer(p))
	return (*byte)(unsafe.Pointer(x ^ 0)) //nolint:staticcheck // intentional no-op xor
}
