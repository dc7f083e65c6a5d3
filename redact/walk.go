package redact

// rekey returns m with fn applied to every key. Keys that collide after
// rewriting are merged with merge.
func rekey[V any](m map[string]V, fn func(string) string, merge func(a, b V) V) map[string]V {
	if len(m) == 0 {
		return m
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		nk := fn(k)
		if prev, ok := out[nk]; ok {
			v = merge(prev, v)
		}
		out[nk] = v
	}
	return out
}

func keepTrue(a, b bool) bool { return a || b }
func sum(a, b int) int        { return a + b }
