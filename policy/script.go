package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
)

const defaultTimeout = 500 * time.Millisecond

var ErrNoCheckFunction = errors.New("lo script non definisce una funzione check(text)")

// Script è una regola sui contenuti scritta in JavaScript. Lo script deve
// definire check(text); un risultato falsy rifiuta la nota.
type Script struct {
	name    string
	program *goja.Program
	timeout time.Duration
}

// Load compila lo script dal file indicato
func Load(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lettura dello script %s: %w", path, err)
	}
	return Compile(path, string(src))
}

// Compile compila il sorgente e verifica che check sia definita
func Compile(name, src string) (*Script, error) {
	program, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, fmt.Errorf("errore nella compilazione di %s: %w", name, err)
	}

	s := &Script{name: name, program: program, timeout: defaultTimeout}
	if _, err := s.load(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// WithTimeout limita il tempo di esecuzione di ogni chiamata
func (s *Script) WithTimeout(d time.Duration) *Script {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Allow esegue check(text) in un runtime nuovo. goja.Runtime non è
// utilizzabile da più goroutine, quindi non viene condiviso tra le richieste.
func (s *Script) Allow(ctx context.Context, text string) (bool, error) {
	vm := goja.New()
	defer s.guard(ctx, vm)()

	check, err := s.run(vm)
	if err != nil {
		return false, err
	}

	result, err := check(goja.Undefined(), vm.ToValue(text))
	if err != nil {
		return false, fmt.Errorf("errore in check(): %w", err)
	}

	return result.ToBoolean(), nil
}

// load esegue il programma in un runtime nuovo e restituisce check
func (s *Script) load(ctx context.Context) (goja.Callable, error) {
	vm := goja.New()
	defer s.guard(ctx, vm)()

	return s.run(vm)
}

func (s *Script) run(vm *goja.Runtime) (goja.Callable, error) {
	if _, err := vm.RunProgram(s.program); err != nil {
		return nil, fmt.Errorf("errore nell'esecuzione di %s: %w", s.name, err)
	}

	check, ok := goja.AssertFunction(vm.Get("check"))
	if !ok {
		return nil, ErrNoCheckFunction
	}
	return check, nil
}

// guard interrompe il runtime allo scadere del timeout o del contesto
func (s *Script) guard(ctx context.Context, vm *goja.Runtime) func() {
	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt("timeout")
	})
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})

	return func() {
		timer.Stop()
		stop()
	}
}
