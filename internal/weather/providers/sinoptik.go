package providers

import (
	"github.com/i474232898/weatherapp/internal/weather"
)

// SinoptikName is the registry name of the sinoptik.ua provider.
const SinoptikName weather.ProviderName = "sinoptik"

// Sinoptik scrapes current conditions from sinoptik.ua.
type Sinoptik struct {
	base
}

// NewSinoptik creates the sinoptik.ua provider.
func NewSinoptik(f *Fetcher) *Sinoptik {
	return &Sinoptik{base: base{fetcher: f, site: site{
		name:      SinoptikName,
		browseURL: "https://ua.sinoptik.ua/",
		defaults: map[string]weather.Location{
			"kyiv": {Name: DefaultCity, URL: "https://ua.sinoptik.ua/pohoda/kyiv"},
			"kiev": {Name: DefaultCity, URL: "https://ua.sinoptik.ua/pohoda/kyiv"},
			"київ": {Name: DefaultCity, URL: "https://ua.sinoptik.ua/pohoda/kyiv"},
		},
		rules: []rule{
			{label: "Temperature", path: []matcher{byClass("today-temp")}, required: true},
			{label: "Condition", path: []matcher{byClass("imgBlock"), byTag("img")}, attr: "alt"},
			{label: "Description", path: []matcher{byClass("description")}},
		},
	}}}
}
