package offline

import "context"

type namespaced struct {
	kv     KeyValue
	prefix string
}

// Namespace returns a KeyValue that stores every key under ns, so several
// users can share one cache without seeing each other's demo data.
func Namespace(kv KeyValue, ns string) KeyValue {
	if ns == "" {
		return kv
	}
	return &namespaced{kv: kv, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.prefix + k
	}
	return n.kv.Remove(ctx, full...)
}
