package di

import "fmt"

// Resolve looks up key and asserts its type.
//
//	cfg, err := di.Resolve[*config.HostConfig](c, di.Keys.Config)
func Resolve[T any](c Container, key string) (T, error) {
	var want T
	v, err := c.Resolve(key)
	if err != nil {
		return want, err
	}
	got, ok := v.(T)
	if !ok {
		return want, fmt.Errorf("di: %s holds %T, not %T", key, v, want)
	}
	return got, nil
}

// TryResolve is Resolve for optional registrations.
func TryResolve[T any](c Container, key string) (T, bool) {
	v, err := Resolve[T](c, key)
	return v, err == nil
}

// MustResolve panics when Resolve fails. Use it where the registration is
// part of the same composition.
func MustResolve[T any](c Container, key string) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return v
}
