package client

import "time"

// methodTimeouts is Go's stand-in for the per-method Timeout(seconds=…)
// annotation: since Go has no method annotations, the proxy keeps a
// sidecar map from method name to its override, populated via
// Options.MethodTimeouts at proxy construction.
type methodTimeouts struct {
	defaultTimeout time.Duration
	perMethod      map[string]time.Duration
}

func newMethodTimeouts(defaultSeconds int, overridesSeconds map[string]int) methodTimeouts {
	mt := methodTimeouts{
		defaultTimeout: time.Duration(defaultSeconds) * time.Second,
		perMethod:      make(map[string]time.Duration, len(overridesSeconds)),
	}
	for method, seconds := range overridesSeconds {
		mt.perMethod[method] = time.Duration(seconds) * time.Second
	}
	return mt
}

// For returns the effective timeout for method: its per-method override if
// one was registered, else the proxy default. Zero means no deadline.
func (mt methodTimeouts) For(method string) time.Duration {
	if d, ok := mt.perMethod[method]; ok {
		return d
	}
	return mt.defaultTimeout
}
