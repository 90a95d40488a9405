package expr

import (
	"testing"
)

func parseOne(t *testing.T, src string, allowPipes bool) (Node, int) {
	t.Helper()
	p, bag := New("test.html", src, allowPipes)
	n := p.Parse()
	if n == nil {
		t.Fatalf("Parse(%q) returned nil", src)
	}
	return n, bag.Len()
}

func TestParsePropertyRead(t *testing.T) {
	n, errs := parseOne(t, "title", true)
	if errs != 0 {
		t.Fatalf("expected no diagnostics, got %d", errs)
	}
	pr, ok := n.(*PropertyRead)
	if !ok {
		t.Fatalf("expected PropertyRead, got %T", n)
	}
	if pr.Name != "title" {
		t.Errorf("expected name title, got %s", pr.Name)
	}
	if _, ok := pr.Receiver.(*ImplicitReceiver); !ok {
		t.Errorf("expected implicit receiver, got %T", pr.Receiver)
	}
}

func TestParseMemberChain(t *testing.T) {
	n, _ := parseOne(t, "user.address?.city", true)
	safe, ok := n.(*SafePropertyRead)
	if !ok {
		t.Fatalf("expected SafePropertyRead, got %T", n)
	}
	if safe.Name != "city" {
		t.Errorf("expected city, got %s", safe.Name)
	}
	inner, ok := safe.Receiver.(*PropertyRead)
	if !ok {
		t.Fatalf("expected PropertyRead receiver, got %T", safe.Receiver)
	}
	if inner.Name != "address" {
		t.Errorf("expected address, got %s", inner.Name)
	}
}

func TestParseCallOnImplicitReceiver(t *testing.T) {
	n, _ := parseOne(t, "handler($event)", false)
	call, ok := n.(*Call)
	if !ok {
		t.Fatalf("expected Call, got %T", n)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
	if id, ok := call.Args[0].(*Identifier); !ok || id.Name != "$event" {
		t.Errorf("expected $event identifier arg, got %#v", call.Args[0])
	}
}

func TestParsePipe(t *testing.T) {
	n, _ := parseOne(t, "name | slice:0:3", true)
	pipe, ok := n.(*PipeUse)
	if !ok {
		t.Fatalf("expected PipeUse, got %T", n)
	}
	if pipe.Name != "slice" {
		t.Errorf("expected slice, got %s", pipe.Name)
	}
	if len(pipe.Args) != 2 {
		t.Errorf("expected 2 pipe args, got %d", len(pipe.Args))
	}
}

func TestPipeDisallowedOutsideBindingPosition(t *testing.T) {
	n, _ := parseOne(t, "a | b", false)
	if _, ok := n.(*PipeUse); ok {
		t.Fatalf("pipe must not parse when pipes are disallowed")
	}
}

func TestParsePrecedence(t *testing.T) {
	n, _ := parseOne(t, "a + b * c", true)
	add, ok := n.(*Binary)
	if !ok || add.Op != "+" {
		t.Fatalf("expected + at root, got %#v", n)
	}
	mul, ok := add.Right.(*Binary)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected * on the right, got %#v", add.Right)
	}
}

func TestParseConditionalAndNullish(t *testing.T) {
	n, _ := parseOne(t, "a ?? b ? c : d", true)
	cond, ok := n.(*Conditional)
	if !ok {
		t.Fatalf("expected Conditional, got %T", n)
	}
	if _, ok := cond.Cond.(*NullishCoalesce); !ok {
		t.Errorf("expected ?? as condition, got %T", cond.Cond)
	}
}

func TestParseAnyUnwraps(t *testing.T) {
	n, _ := parseOne(t, "$any(user).secret", true)
	pr, ok := n.(*PropertyRead)
	if !ok {
		t.Fatalf("expected PropertyRead, got %T", n)
	}
	inner, ok := pr.Receiver.(*PropertyRead)
	if !ok || inner.Name != "user" {
		t.Fatalf("$any must unwrap to its argument, got %#v", pr.Receiver)
	}
}

func TestParseChainKeepsAllExpressions(t *testing.T) {
	p, _ := New("test.html", "log(); done()", false)
	n := p.ParseChain()
	chain, ok := n.(*Chain)
	if !ok {
		t.Fatalf("expected Chain, got %T", n)
	}
	if len(chain.Expressions) != 2 {
		t.Errorf("expected 2 chained expressions, got %d", len(chain.Expressions))
	}
}

func TestParseObjectAndArrayLiterals(t *testing.T) {
	n, errs := parseOne(t, "{ref: 'x', items: [1, 2]}", true)
	if errs != 0 {
		t.Fatalf("expected clean parse, got %d diagnostics", errs)
	}
	obj, ok := n.(*Literal)
	if !ok || obj.Kind != LitObject {
		t.Fatalf("expected object literal, got %#v", n)
	}
	if len(obj.Entries) != 2 || obj.Entries[0].Key != "ref" || obj.Entries[1].Key != "items" {
		t.Fatalf("entries out of order: %#v", obj.Entries)
	}
	arr, ok := obj.Entries[1].Value.(*Literal)
	if !ok || arr.Kind != LitArray || len(arr.Elements) != 2 {
		t.Fatalf("expected 2-element array, got %#v", obj.Entries[1].Value)
	}
}

func TestRecoveryProducesEmptyAndDiagnostic(t *testing.T) {
	p, bag := New("test.html", "a +", true)
	n := p.Parse()
	if bag.Len() == 0 {
		t.Fatalf("expected a diagnostic for truncated expression")
	}
	if n == nil {
		t.Fatalf("recovery must still return a node")
	}
}

func TestEmptyInputYieldsEmptyNode(t *testing.T) {
	p, _ := New("test.html", "", true)
	if _, ok := p.Parse().(*Empty); !ok {
		t.Fatalf("empty fragment must parse to Empty")
	}
}

func TestTypeGuardWrapsExpression(t *testing.T) {
	n, _ := parseOne(t, "value as User", true)
	guard, ok := n.(*TypeGuard)
	if !ok {
		t.Fatalf("expected TypeGuard, got %T", n)
	}
	if guard.Type != "User" {
		t.Errorf("expected User, got %s", guard.Type)
	}
}
