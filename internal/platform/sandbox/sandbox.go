// Package sandbox evaluates strategy scripts written in Go with yaegi.
//
// A script is a main package that imports socli/player and socli/decision and
// defines
//
//	func Decide(p player.Player) *decision.Verdict
//
// The result may also be a decision.Verdict value, and either form may carry a
// trailing error. Every evaluation builds a new interpreter, so nothing a
// script stores in package variables survives to the next call.
package sandbox

import (
	"context"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/traefik/yaegi/interp"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
)

const EntryPoint = "Decide"

var (
	ErrCompile    = errors.New("script does not compile")
	ErrEntryPoint = errors.New("script entry point is invalid")
	ErrRuntime    = errors.New("script failed at runtime")
	ErrTimeout    = errors.New("script exceeded its time budget")
)

type Sandbox struct {
	symbols interp.Exports
	timeout time.Duration
}

// New builds a sandbox. timeout bounds one evaluation; zero disables the bound.
func New(timeout time.Duration) *Sandbox {
	return &Sandbox{symbols: hostSymbols(), timeout: timeout}
}

// Evaluate runs source against p in a fresh interpreter. A nil verdict with a
// nil error means the strategy did not fire.
func (s *Sandbox) Evaluate(ctx context.Context, name, source string, p player.Player) (*decision.Verdict, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.Wrapf(ErrCompile, "%s is empty", name)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	i, fn, err := s.compile(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ErrTimeout, "%s: %v", name, ctxErr)
		}
		return nil, errors.Wrapf(err, "%s", name)
	}
	if !fn.IsValid() {
		return nil, errors.Wrapf(ErrEntryPoint, "%s must define %s(player.Player) *decision.Verdict", name, EntryPoint)
	}
	if fn.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrEntryPoint, "%s: %s is not a function", name, EntryPoint)
	}

	verdict, err := invoke(ctx, i, fn, p.Clone())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ErrTimeout, "%s: %v", name, ctxErr)
		}
		return nil, errors.Wrapf(err, "%s", name)
	}
	return verdict, nil
}

func (s *Sandbox) compile(ctx context.Context, source string) (i *interp.Interpreter, fn reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrCompile, "panic: %v", r)
		}
	}()

	i = interp.New(interp.Options{Stdout: io.Discard, Stderr: io.Discard})
	if err := i.Use(s.symbols); err != nil {
		return nil, reflect.Value{}, errors.Wrap(err, "register sandbox symbols")
	}
	if _, err := i.EvalWithContext(ctx, source); err != nil {
		return nil, reflect.Value{}, errors.Wrapf(ErrCompile, "%v", err)
	}
	fn, err = i.EvalWithContext(ctx, EntryPoint)
	if err != nil {
		return nil, reflect.Value{}, errors.Wrapf(ErrEntryPoint, "lookup %s: %v", EntryPoint, err)
	}
	return i, fn, nil
}

// invoke calls the entry point through the interpreter so ctx can stop it.
// The player is bound as input.Player and the results come back as a slice.
func invoke(ctx context.Context, i *interp.Interpreter, fn reflect.Value, p player.Player) (verdict *decision.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict = nil
			err = errors.Wrapf(ErrRuntime, "panic: %v", r)
		}
	}()

	fnType := fn.Type()
	if fnType.NumIn() != 1 {
		return nil, errors.Wrapf(ErrEntryPoint, "%s must take exactly one player.Player", EntryPoint)
	}
	var wrapper string
	switch fnType.NumOut() {
	case 1:
		wrapper = "func socliRun() []interface{} { v := " + EntryPoint + "(input.Player); return []interface{}{v} }"
	case 2:
		wrapper = "func socliRun() []interface{} { v, err := " + EntryPoint + "(input.Player); return []interface{}{v, err} }"
	default:
		return nil, errors.Wrapf(ErrEntryPoint, "%s must return a verdict and an optional error", EntryPoint)
	}

	if err := i.Use(inputSymbols(&p)); err != nil {
		return nil, errors.Wrap(err, "register sandbox input")
	}
	for _, snippet := range []string{`import "` + inputImport + `"`, wrapper} {
		if _, err := i.EvalWithContext(ctx, snippet); err != nil {
			return nil, errors.Wrapf(ErrRuntime, "prepare call: %v", err)
		}
	}
	out, err := i.EvalWithContext(ctx, "socliRun()")
	if err != nil {
		return nil, errors.Wrapf(ErrRuntime, "%v", err)
	}
	values, ok := out.Interface().([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrEntryPoint, "%s returned an unexpected shape", EntryPoint)
	}
	results := make([]reflect.Value, 0, len(values))
	for _, v := range values {
		results = append(results, reflect.ValueOf(v))
	}
	return decodeResults(results)
}

func decodeResults(results []reflect.Value) (*decision.Verdict, error) {
	if len(results) == 0 || len(results) > 2 {
		return nil, errors.Wrapf(ErrEntryPoint, "%s must return a verdict and an optional error", EntryPoint)
	}
	if len(results) == 2 {
		if errVal := results[1]; errVal.IsValid() && !isNil(errVal) {
			if e, ok := errVal.Interface().(error); ok {
				return nil, errors.Wrapf(ErrRuntime, "%v", e)
			}
			return nil, errors.Wrapf(ErrEntryPoint, "%s returned a non-error second value", EntryPoint)
		}
	}

	first := results[0]
	if !first.IsValid() || isNil(first) {
		return nil, nil
	}
	switch v := first.Interface().(type) {
	case *decision.Verdict:
		return v, nil
	case decision.Verdict:
		return &v, nil
	default:
		return nil, errors.Wrapf(ErrEntryPoint, "%s returned %T, want *decision.Verdict", EntryPoint, v)
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
