// Package dtb decodes, queries and encodes Flattened Device Tree blobs, the
// binary hardware description a bootloader hands to a kernel.
//
// A blob is laid out as
//
//	[header][reserved-memory entries..., zero entry][structure block][strings block]
//
// with every multi-byte field stored big-endian.
//
// New validates the header and block layout in constant time and returns a
// Reader that borrows the blob. Token-stream problems are reported lazily by
// StructIter as the offending token is reached, unless ValidateEager is
// selected in Options.
//
//	r, err := dtb.New(blob)
//	if err != nil {
//	    return err
//	}
//	for e := range r.ReservedMem().All() {
//	    reserve(e.Address, e.Size)
//	}
//	item, err := r.FindProperty("/chosen/stdout-path")
//	if err != nil {
//	    return err
//	}
//	path, err := item.ValueStr()
//
// Path queries locate every node or property matching a slash-separated
// pattern without building the tree. Each match comes with an iterator
// positioned just after it, which can be queried again with a relative
// pattern:
//
//	q := r.Struct().Find("/soc/uart")
//	for _, inside := range q.All() {
//	    reg, _, err := inside.First("reg")
//	    ...
//	}
//
// The reader and its iterators never modify the blob, and constructing a
// reader, walking it and querying it do not allocate. Only errors for
// malformed input are allocated, to carry an offset or cause. Names and
// values returned in an Item alias the blob, so the blob must not be
// modified while they are in use.
//
// Writer is the inverse: it serializes reserved entries and tokens into a
// caller-owned buffer and fills in the header on Finish.
package dtb
