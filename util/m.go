package util

type M map[string]any

func MGet[T any](m M, key string) (T, bool) {
	v, ok := m[key]
	if !ok {
		return Default[T](), false
	}
	v1, ok := v.(T)
	return v1, ok
}

func (m M) Set(key string, val any) {
	m[key] = val
}

func (m M) Copy() M {
	c := make(M, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
