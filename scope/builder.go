package scope

// builder is implemented by every per-kind ScopeBuilder. It exposes the
// FreeNameTracker so the ScopeBuilderStack can merge an inner builder's
// findings into its enclosing builder on pop.
type builder interface {
	tracker() *FreeNameTracker

	// scopeIndexForNesting returns the Index a construct newly entered while
	// this builder is the innermost one should record as its own enclosing
	// scope. For Block/NamedLambda builders that is their own allocated
	// index; for the parameters builder it is the function's own scope
	// index; for the body builder it is the pre-allocated function-lexical
	// index.
	scopeIndexForNesting() Index
}

// isFunctionBoundary is implemented by the one builder kind whose pop
// crosses a function boundary for free-name propagation purposes: the
// parameters builder represents a whole function's footprint being merged
// into whatever lexically encloses it.
type isFunctionBoundary interface {
	functionBoundary()
}

// builderStack is the ScopeBuilderStack: the active chain of in-progress
// scope builders, one per enclosing lexical region, innermost last.
type builderStack struct {
	frames []builder
}

func (s *builderStack) push(b builder) { s.frames = append(s.frames, b) }

func (s *builderStack) top() builder {
	if len(s.frames) == 0 {
		fail("builder stack: top() on empty stack")
	}
	return s.frames[len(s.frames)-1]
}

// pop removes and returns the innermost builder, merging its tracker into
// the new top (if any remain on the stack).
func (s *builderStack) pop() builder {
	n := len(s.frames)
	if n == 0 {
		fail("builder stack: pop() on empty stack")
	}
	popped := s.frames[n-1]
	s.frames = s.frames[:n-1]

	if len(s.frames) > 0 {
		parent := s.frames[len(s.frames)-1].tracker()
		if _, crosses := popped.(isFunctionBoundary); crosses {
			parent.propagateFromInnerScript(popped.tracker())
		} else {
			parent.propagateFromInnerNonScript(popped.tracker())
		}
	}
	return popped
}

func (s *builderStack) empty() bool { return len(s.frames) == 0 }

func (s *builderStack) len() int { return len(s.frames) }
