package template

// Visitor mirrors pkg/expr.Visitor's shape: one method per node variant.
type Visitor interface {
	VisitElement(*Element) interface{}
	VisitTemplate(*Template) interface{}
	VisitText(*Text) interface{}
	VisitBoundText(*BoundText) interface{}
	VisitReference(*Reference) interface{}
	VisitContent(*Content) interface{}
	VisitIfBlock(*IfBlock) interface{}
	VisitForBlock(*ForBlock) interface{}
	VisitSwitchBlock(*SwitchBlock) interface{}
	VisitLetDeclaration(*LetDeclaration) interface{}
	VisitDeferBlock(*DeferBlock) interface{}
	VisitInvalid(*Invalid) interface{}
}

// BaseVisitor provides default depth-first traversal; embed and override
// only the node kinds a given pass needs.
type BaseVisitor struct{}

func (BaseVisitor) VisitElement(n *Element) interface{} {
	for _, c := range n.Children {
		c.Accept(BaseVisitor{})
	}
	return nil
}

func (BaseVisitor) VisitTemplate(n *Template) interface{} {
	for _, c := range n.Children {
		c.Accept(BaseVisitor{})
	}
	return nil
}

func (BaseVisitor) VisitText(n *Text) interface{} { return nil }

func (BaseVisitor) VisitBoundText(n *BoundText) interface{} { return nil }

func (BaseVisitor) VisitReference(n *Reference) interface{} { return nil }

func (BaseVisitor) VisitContent(n *Content) interface{} { return nil }

func (BaseVisitor) VisitIfBlock(n *IfBlock) interface{} {
	for _, br := range n.Branches {
		if br.Body != nil {
			br.Body.Accept(BaseVisitor{})
		}
	}
	return nil
}

func (BaseVisitor) VisitForBlock(n *ForBlock) interface{} {
	if n.ItemTemplate != nil {
		n.ItemTemplate.Accept(BaseVisitor{})
	}
	if n.EmptyTemplate != nil {
		n.EmptyTemplate.Accept(BaseVisitor{})
	}
	return nil
}

func (BaseVisitor) VisitSwitchBlock(n *SwitchBlock) interface{} {
	for _, c := range n.Cases {
		if c.Body != nil {
			c.Body.Accept(BaseVisitor{})
		}
	}
	return nil
}

func (BaseVisitor) VisitLetDeclaration(n *LetDeclaration) interface{} { return nil }

func (BaseVisitor) VisitDeferBlock(n *DeferBlock) interface{} {
	for _, t := range []*Template{n.Main, n.Placeholder, n.Loading, n.Error} {
		if t != nil {
			t.Accept(BaseVisitor{})
		}
	}
	return nil
}

func (BaseVisitor) VisitInvalid(n *Invalid) interface{} { return nil }
