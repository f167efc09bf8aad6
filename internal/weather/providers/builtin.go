package providers

import "github.com/i474232898/weatherapp/internal/weather"

// BuiltinNames lists the built-in providers in registration order.
func BuiltinNames() []weather.ProviderName {
	return []weather.ProviderName{AccuName, RP5Name, SinoptikName}
}

// RegisterBuiltins registers accu, rp5 and sinoptik, in that order, each
// wrapped with mws.
func RegisterBuiltins(reg *weather.Registry, f *Fetcher, mws ...weather.Middleware) {
	for _, p := range []weather.Provider{NewAccu(f), NewRP5(f), NewSinoptik(f)} {
		reg.Register(p.Name(), weather.Chain(p, mws...))
	}
}
