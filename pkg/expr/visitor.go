package expr

// Visitor has one method per node variant, interface{} return for
// flexibility.
type Visitor interface {
	VisitLiteral(*Literal) interface{}
	VisitIdentifier(*Identifier) interface{}
	VisitImplicitReceiver(*ImplicitReceiver) interface{}
	VisitThisReceiver(*ThisReceiver) interface{}
	VisitPropertyRead(*PropertyRead) interface{}
	VisitSafePropertyRead(*SafePropertyRead) interface{}
	VisitKeyedRead(*KeyedRead) interface{}
	VisitCall(*Call) interface{}
	VisitSafeCall(*SafeCall) interface{}
	VisitMethodCall(*MethodCall) interface{}
	VisitPrefix(*Prefix) interface{}
	VisitBinary(*Binary) interface{}
	VisitConditional(*Conditional) interface{}
	VisitChain(*Chain) interface{}
	VisitPipeUse(*PipeUse) interface{}
	VisitAssignment(*Assignment) interface{}
	VisitNullishCoalesce(*NullishCoalesce) interface{}
	VisitTypeGuard(*TypeGuard) interface{}
	VisitTemplateLiteral(*TemplateLiteral) interface{}
	VisitEmpty(*Empty) interface{}
	VisitResolvedRead(*ResolvedRead) interface{}
	VisitPipeBindRef(*PipeBindRef) interface{}
	VisitPureFunctionRef(*PureFunctionRef) interface{}
}

// BaseVisitor provides default traversal (visit children, return nil) for
// every method: embed it and override only the node kinds a given pass
// cares about.
type BaseVisitor struct{}

func (BaseVisitor) VisitLiteral(n *Literal) interface{} {
	for _, e := range n.Elements {
		e.Accept(BaseVisitor{})
	}
	for _, kv := range n.Entries {
		kv.Value.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitIdentifier(n *Identifier) interface{}             { return nil }
func (BaseVisitor) VisitImplicitReceiver(n *ImplicitReceiver) interface{} { return nil }
func (BaseVisitor) VisitThisReceiver(n *ThisReceiver) interface{}         { return nil }
func (BaseVisitor) VisitPropertyRead(n *PropertyRead) interface{} {
	return n.Receiver.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitSafePropertyRead(n *SafePropertyRead) interface{} {
	return n.Receiver.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitKeyedRead(n *KeyedRead) interface{} {
	n.Receiver.Accept(BaseVisitor{})
	return n.Key.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitCall(n *Call) interface{} {
	n.Callee.Accept(BaseVisitor{})
	for _, a := range n.Args {
		a.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitSafeCall(n *SafeCall) interface{} {
	n.Callee.Accept(BaseVisitor{})
	for _, a := range n.Args {
		a.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitMethodCall(n *MethodCall) interface{} {
	n.Receiver.Accept(BaseVisitor{})
	for _, a := range n.Args {
		a.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitPrefix(n *Prefix) interface{} { return n.Operand.Accept(BaseVisitor{}) }
func (BaseVisitor) VisitBinary(n *Binary) interface{} {
	n.Left.Accept(BaseVisitor{})
	return n.Right.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitConditional(n *Conditional) interface{} {
	n.Cond.Accept(BaseVisitor{})
	n.Then.Accept(BaseVisitor{})
	return n.Else.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitChain(n *Chain) interface{} {
	for _, e := range n.Expressions {
		e.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitPipeUse(n *PipeUse) interface{} {
	n.Left.Accept(BaseVisitor{})
	for _, a := range n.Args {
		a.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitAssignment(n *Assignment) interface{} {
	n.Target.Accept(BaseVisitor{})
	return n.Value.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitNullishCoalesce(n *NullishCoalesce) interface{} {
	n.Left.Accept(BaseVisitor{})
	return n.Right.Accept(BaseVisitor{})
}
func (BaseVisitor) VisitTypeGuard(n *TypeGuard) interface{} { return n.Expr.Accept(BaseVisitor{}) }
func (BaseVisitor) VisitTemplateLiteral(n *TemplateLiteral) interface{} {
	for _, e := range n.Expressions {
		e.Accept(BaseVisitor{})
	}
	return nil
}
func (BaseVisitor) VisitEmpty(n *Empty) interface{} { return nil }

func (BaseVisitor) VisitResolvedRead(n *ResolvedRead) interface{} { return nil }

func (BaseVisitor) VisitPipeBindRef(n *PipeBindRef) interface{} {
	for _, a := range n.Args {
		a.Accept(BaseVisitor{})
	}
	return nil
}

func (BaseVisitor) VisitPureFunctionRef(n *PureFunctionRef) interface{} {
	for _, a := range n.FreeVars {
		a.Accept(BaseVisitor{})
	}
	return nil
}
