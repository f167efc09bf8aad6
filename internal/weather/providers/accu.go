package providers

import (
	"net/http"

	"github.com/i474232898/weatherapp/internal/weather"
)

// AccuName is the registry name of the AccuWeather provider.
const AccuName weather.ProviderName = "accu"

// Accu scrapes current conditions from AccuWeather.
type Accu struct {
	base
}

// NewAccu creates the AccuWeather provider.
func NewAccu(f *Fetcher) *Accu {
	card := byClass("cur-con-weather-card__panel")
	return &Accu{base: base{fetcher: f, site: site{
		name:      AccuName,
		browseURL: "https://www.accuweather.com/en/browse-locations",
		defaults: map[string]weather.Location{
			"kyiv": {Name: DefaultCity, URL: "https://www.accuweather.com/en/ua/kyiv/324505/weather-forecast/324505"},
			"kiev": {Name: DefaultCity, URL: "https://www.accuweather.com/en/ua/kyiv/324505/weather-forecast/324505"},
		},
		header: http.Header{"Accept-Language": {"en-US,en;q=0.8"}},
		rules: []rule{
			{label: "Temperature", path: []matcher{card, byClass("temp")}, required: true},
			{label: "Condition", path: []matcher{byClass("phrase")}},
			{label: "RealFeel", path: []matcher{byClass("real-feel")}},
		},
	}}}
}
