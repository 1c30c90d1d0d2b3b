package dtb

// Validate walks the whole structure block and checks every token decodes,
// that nodes nest, that there is at most one top-level node, and that no
// property sits outside a node. It does not move any existing iterator.
func (r Reader) Validate() error {
	it := r.Struct()
	depth, roots := 0, 0
	for {
		off := it.off
		item, err := it.Next()
		if IsCode(err, CodeNoMoreStructItems) {
			if depth != 0 {
				return structError(CodeUnbalancedNodes, it.off)
			}
			return nil
		}
		if err != nil {
			return err
		}
		switch item.Kind {
		case ItemBeginNode:
			if depth == 0 {
				if roots > 0 {
					return structError(CodeMultipleRoots, off)
				}
				roots++
			}
			depth++
		case ItemProperty:
			if depth == 0 {
				return structError(CodePropertyOutsideNode, off)
			}
		case ItemEndNode:
			if depth == 0 {
				return structError(CodeUnexpectedEndNode, off)
			}
			depth--
		}
	}
}
