package di

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/apphost/errors"
)

type closer struct {
	name  string
	log   *[]string
	err   error
	count int
}

func (c *closer) Close() error {
	c.count++
	*c.log = append(*c.log, c.name)
	return c.err
}

func TestRegisterSingletonAndResolve(t *testing.T) {
	c := NewContainer()
	if err := c.RegisterSingleton("greeting", "hello"); err != nil {
		t.Fatalf("RegisterSingleton failed: %v", err)
	}

	val, err := c.Resolve("greeting")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected 'hello', got %v", val)
	}
	if !c.Has("greeting") || c.Has("other") {
		t.Error("Has reports wrong registrations")
	}
}

func TestResolveNotRegistered(t *testing.T) {
	_, err := NewContainer().Resolve("nonexistent")
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' error, got %v", err)
	}
}

func TestDuplicateKey(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton(Keys.Config, 1)
	if err := c.RegisterLazy(Keys.Config, func() int { return 2 }); err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestRegisterLazy_RunsOnceAndRemembersError(t *testing.T) {
	c := NewContainer()
	calls := 0
	loadErr := apperrors.InvalidConfig("file config.yml", errors.New("bad yaml"))
	_ = c.RegisterLazy(Keys.Config, func() (string, error) {
		calls++
		return "", loadErr
	})

	if calls != 0 {
		t.Fatal("lazy constructor ran at registration")
	}
	for i := 0; i < 3; i++ {
		_, err := c.Resolve(Keys.Config)
		if apperrors.KindOf(err) != apperrors.KindInvalidConfig {
			t.Fatalf("expected INVALID_CONFIG, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one constructor call, got %d", calls)
	}
}

func TestRegisterEager(t *testing.T) {
	c := NewContainer()
	called := false
	if err := c.RegisterEager("eager", func() string {
		called = true
		return "eager-value"
	}); err != nil {
		t.Fatalf("RegisterEager failed: %v", err)
	}
	if !called {
		t.Error("expected constructor to run on registration")
	}

	err := c.RegisterEager("broken", func() (string, error) { return "", errors.New("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected eager failure, got %v", err)
	}
}

func TestConstructorArguments(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("port", 8787)
	_ = c.RegisterLazy("url", func(c Container) (string, error) {
		port, err := Resolve[int](c, "port")
		if err != nil {
			return "", err
		}
		if port != 8787 {
			return "", errors.New("wrong port")
		}
		return "http://*:8787/", nil
	})
	_ = c.RegisterLazy("ctx", func(ctx context.Context) bool { return ctx != nil })

	if got := MustResolve[string](c, "url"); got != "http://*:8787/" {
		t.Errorf("unexpected url %q", got)
	}
	if !MustResolve[bool](c, "ctx") {
		t.Error("expected context argument")
	}
}

func TestBadConstructors(t *testing.T) {
	tests := []struct {
		name string
		ctor interface{}
	}{
		{"not a function", "value"},
		{"no results", func() {}},
		{"non-error second result", func() (int, int) { return 1, 2 }},
		{"two arguments", func(a, b int) int { return a + b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewContainer().RegisterLazy("x", tt.ctor); err == nil {
				t.Error("expected registration error")
			}
		})
	}
}

func TestGenericResolveTypeMismatch(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("num", 42)

	if _, err := Resolve[string](c, "num"); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, ok := TryResolve[string](c, "num"); ok {
		t.Error("TryResolve should fail on type mismatch")
	}
	if v, ok := TryResolve[int](c, "num"); !ok || v != 42 {
		t.Errorf("TryResolve = %v, %v", v, ok)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustResolve[string](c, "missing")
}

func TestClose_ReverseInitOrderOnce(t *testing.T) {
	var closed []string
	c := NewContainer()
	a := &closer{name: "a", log: &closed}
	b := &closer{name: "b", log: &closed}
	never := &closer{name: "never", log: &closed}

	_ = c.RegisterLazy("b", func() *closer { return b })
	_ = c.RegisterSingleton("a", a)
	_ = c.RegisterLazy("never", func() *closer { return never })
	if _, err := c.Resolve("b"); err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if strings.Join(closed, ",") != "b,a" {
		t.Errorf("expected close order b,a got %v", closed)
	}
	if a.count != 1 || b.count != 1 || never.count != 0 {
		t.Errorf("unexpected close counts a=%d b=%d never=%d", a.count, b.count, never.count)
	}
	if !c.Closed() {
		t.Error("expected closed")
	}
	if _, err := c.Resolve("a"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := c.RegisterSingleton("late", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestClose_JoinsErrors(t *testing.T) {
	var closed []string
	c := NewContainer()
	_ = c.RegisterSingleton("a", &closer{name: "a", log: &closed, err: errors.New("a failed")})
	_ = c.RegisterSingleton("b", &closer{name: "b", log: &closed})

	err := c.Close()
	if err == nil || !strings.Contains(err.Error(), "a failed") {
		t.Errorf("expected joined close error, got %v", err)
	}
	if len(closed) != 2 {
		t.Errorf("expected both closers to run, got %v", closed)
	}
}

func TestRegistrations(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton(Keys.Logger, "log")
	_ = c.RegisterLazy(Keys.Config, func() string { return "cfg" })

	regs := c.Registrations()
	if len(regs) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(regs))
	}
	if regs[0].Key != Keys.Logger || regs[0].Mode != Singleton || !regs[0].Initialized {
		t.Errorf("unexpected first registration %+v", regs[0])
	}
	if regs[1].Key != Keys.Config || regs[1].Mode != Lazy || regs[1].Initialized {
		t.Errorf("unexpected second registration %+v", regs[1])
	}
	if Lazy.String() != "lazy" {
		t.Errorf("unexpected mode name %q", Lazy.String())
	}
}
