// Package decorator reads component metadata manifests. Full decorator
// extraction from source files is an external collaborator of the core;
// this package gives the CLI and tests a concrete
// implementation of component.Extractor fed by a JSON manifest that
// mirrors the decorator shape field for field.
package decorator

import (
	"bytes"
	"fmt"

	"github.com/bitly/go-simplejson"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/gaarutyunov/facet/pkg/component"
)

// manifest is the strict, ordered part of the document. Inputs and
// outputs are arrays, not objects, so decoding preserves source order.
type manifest struct {
	Components []entry `json:"components"`
}

type entry struct {
	ClassName           string         `json:"className"`
	Kind                string         `json:"kind"` // "component" (default), "directive", "pipe"
	Selector            string         `json:"selector"`
	Standalone          bool           `json:"standalone"`
	ChangeDetection     string         `json:"changeDetection"` // "OnPush" or "Default" (default)
	Encapsulation       string         `json:"encapsulation"`   // "Emulated" (default) or "None"
	Template            string         `json:"template"`
	PreserveWhitespaces bool           `json:"preserveWhitespaces"`
	Styles              []string       `json:"styles"`
	Inputs              []inputEntry   `json:"inputs"`
	Outputs             []outputEntry  `json:"outputs"`
	Dependencies        []depEntry     `json:"dependencies"`
	HostDirectives      jsontext.Value `json:"hostDirectives"`
	Host                jsontext.Value `json:"host"`
	CtorDeps            []string       `json:"ctorDeps"`
	PipeName            string         `json:"pipeName"`
	PipePure            *bool          `json:"pipePure"`
}

type inputEntry struct {
	Public    string `json:"public"`
	Field     string `json:"field"`
	Required  bool   `json:"required"`
	Transform string `json:"transform"`
}

type outputEntry struct {
	Public string `json:"public"`
	Field  string `json:"field"`
}

type depEntry struct {
	ClassName string `json:"className"`
	Kind      string `json:"kind"`
	PipeName  string `json:"pipeName"`
	PipePure  *bool  `json:"pipePure"`
}

// Reader implements component.Extractor over manifest bytes.
type Reader struct{}

// New returns a manifest reader.
func New() *Reader { return &Reader{} }

// Extract parses a manifest document into component records.
func (r *Reader) Extract(filename string, source []byte) ([]*component.Record, error) {
	var m manifest
	if err := json.Unmarshal(source, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filename, err)
	}
	records := make([]*component.Record, 0, len(m.Components))
	for i := range m.Components {
		rec, err := toRecord(&m.Components[i])
		if err != nil {
			return nil, fmt.Errorf("manifest %s, component %d: %w", filename, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseDeclaration parses a single declaration object — the argument of a
// ɵɵngDeclareComponent/Directive/Pipe call in a pre-compiled library file
// — into a Record. The object follows the same schema as one manifest
// components[] entry.
func ParseDeclaration(data []byte) (*component.Record, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse declaration: %w", err)
	}
	return toRecord(&e)
}

func toRecord(e *entry) (*component.Record, error) {
	rec := &component.Record{
		ClassName:           e.ClassName,
		Kind:                parseKind(e.Kind),
		Selector:            e.Selector,
		Standalone:          e.Standalone,
		ChangeDetection:     component.ChangeDetectionDefault,
		Encapsulation:       component.EncapsulationEmulated,
		Template:            e.Template,
		PreserveWhitespaces: e.PreserveWhitespaces,
		Styles:              e.Styles,
		CtorDeps:            e.CtorDeps,
		PipeName:            e.PipeName,
		PipePure:            e.PipePure == nil || *e.PipePure,
	}
	if e.ChangeDetection == "OnPush" {
		rec.ChangeDetection = component.ChangeDetectionOnPush
	}
	if e.Encapsulation == "None" {
		rec.Encapsulation = component.EncapsulationNone
	}
	for _, in := range e.Inputs {
		field := in.Field
		if field == "" {
			field = in.Public
		}
		rec.Inputs = append(rec.Inputs, component.Input{Public: in.Public, Field: field, Required: in.Required, Transform: in.Transform})
	}
	for _, out := range e.Outputs {
		field := out.Field
		if field == "" {
			field = out.Public
		}
		rec.Outputs = append(rec.Outputs, component.Output{Public: out.Public, Field: field})
	}
	for _, d := range e.Dependencies {
		rec.Dependencies = append(rec.Dependencies, component.Dependency{
			ClassName: d.ClassName,
			Kind:      parseKind(d.Kind),
			PipeName:  d.PipeName,
			PipePure:  d.PipePure == nil || *d.PipePure,
		})
	}
	if err := parseHostDirectives(rec, e.HostDirectives); err != nil {
		return nil, err
	}
	if err := parseHost(rec, e.Host); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseKind(s string) component.Kind {
	switch s {
	case "directive":
		return component.KindDirective
	case "pipe":
		return component.KindPipe
	}
	return component.KindComponent
}

// parseHostDirectives ingests the hostDirectives blob, which real
// decorators allow in two shapes per element: a bare class-name string, or
// an object with className/inputs/outputs. The free-form shape goes
// through simplejson instead of a strict struct.
func parseHostDirectives(rec *component.Record, raw jsontext.Value) error {
	if len(raw) == 0 {
		return nil
	}
	js, err := simplejson.NewJson(raw)
	if err != nil {
		return fmt.Errorf("parse hostDirectives: %w", err)
	}
	arr, err := js.Array()
	if err != nil {
		return fmt.Errorf("hostDirectives is not an array: %w", err)
	}
	for i := range arr {
		item := js.GetIndex(i)
		if name, err := item.String(); err == nil {
			rec.HostDirectives = append(rec.HostDirectives, component.HostDirective{ClassName: name})
			continue
		}
		hd := component.HostDirective{ClassName: item.Get("className").MustString()}
		for _, v := range item.Get("inputs").MustStringArray() {
			hd.Inputs = append(hd.Inputs, v)
		}
		for _, v := range item.Get("outputs").MustStringArray() {
			hd.Outputs = append(hd.Outputs, v)
		}
		if hd.ClassName == "" {
			return fmt.Errorf("hostDirectives[%d] has no className", i)
		}
		rec.HostDirectives = append(rec.HostDirectives, hd)
	}
	return nil
}

// parseHost ingests the `host` object: `"[target]": "expr"` pairs become
// host bindings, `"(event)": "handler"` pairs host listeners, anything
// else a static host attribute folded into a binding with a quoted value.
// Key order in the source document is preserved.
func parseHost(rec *component.Record, raw jsontext.Value) error {
	if len(raw) == 0 {
		return nil
	}
	dec := jsontext.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.ReadToken()
	if err != nil || tok.Kind() != '{' {
		return fmt.Errorf("host is not an object")
	}
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return fmt.Errorf("parse host: %w", err)
		}
		key := keyTok.String()
		valTok, err := dec.ReadToken()
		if err != nil {
			return fmt.Errorf("parse host %q: %w", key, err)
		}
		val := valTok.String()
		switch {
		case len(key) > 2 && key[0] == '[' && key[len(key)-1] == ']':
			rec.HostBindings = append(rec.HostBindings, component.HostBinding{Target: key[1 : len(key)-1], Expr: val})
		case len(key) > 2 && key[0] == '(' && key[len(key)-1] == ')':
			rec.HostListeners = append(rec.HostListeners, component.HostListenerDecl{Event: key[1 : len(key)-1], Handler: val})
		default:
			rec.HostBindings = append(rec.HostBindings, component.HostBinding{Target: "attr." + key, Expr: fmt.Sprintf("%q", val)})
		}
	}
	return nil
}
