package providers

import (
	"net/http"

	"github.com/i474232898/weatherapp/internal/weather"
)

// RP5Name is the registry name of the rp5.ua provider.
const RP5Name weather.ProviderName = "rp5"

// RP5 scrapes current conditions from rp5.ua.
type RP5 struct {
	base
}

// NewRP5 creates the rp5.ua provider.
func NewRP5(f *Fetcher) *RP5 {
	return &RP5{base: base{fetcher: f, site: site{
		name:      RP5Name,
		browseURL: "http://rp5.ua/Weather_in_the_world",
		defaults: map[string]weather.Location{
			"kyiv": {Name: DefaultCity, URL: "http://rp5.ua/Weather_in_Kiev,_Kyiv"},
			"kiev": {Name: DefaultCity, URL: "http://rp5.ua/Weather_in_Kiev,_Kyiv"},
		},
		header: http.Header{"Accept-Language": {"en-US,en;q=0.8"}},
		rules: []rule{
			// t_0 holds Celsius, t_1 the hidden Fahrenheit value.
			{label: "Temperature", path: []matcher{byID("ArchTemp"), byClass("t_0")}, required: true},
			{label: "FeelsLike", path: []matcher{byID("FheaderTemp"), byClass("t_0")}},
			{label: "Condition", path: []matcher{byClass("ArchiveInfo")}, firstText: true},
		},
	}}}
}
