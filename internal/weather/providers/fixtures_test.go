package providers

const accuPage = `<!DOCTYPE html>
<html><head><title>Kyiv Weather</title><script>var temp = "99";</script></head>
<body>
<a class="cur-con-weather-card card-module" href="/en/ua/kyiv/324505/current-weather/324505">
  <div class="cur-con-weather-card__panel">
    <div class="forecast-container">
      <div class="temp">21&#xB0;<span class="after-temp">C</span></div>
    </div>
    <div class="real-feel">
      RealFeel&reg; 19&#xB0;
    </div>
  </div>
  <div class="cur-con-weather-card__panel details-container">
    <span class="phrase">Clouds &amp;amp; sun</span>
  </div>
</a>
</body></html>`

const rp5Page = `<html><body>
<div id="FheaderTemp"><span class="t_0">+3 &deg;C</span><span class="t_1">+37 &deg;F</span></div>
<div id="ArchTemp"><span class="t_0" style="display: block;">+5 &deg;C</span><span class="t_1" style="display: none;">+41 &deg;F</span></div>
<div class="ArchiveInfo">
   Overcast,   light rain
   <b>12:00</b>
</div>
</body></html>`

const sinoptikPage = `<html><body>
<div class="main loaded" id="bd1c">
  <div class="imgBlock">
    <div class="img"><img width="188" height="150" src="//sinst.fwdcdn.com/img/weatherImg/b/d300.jpg" alt="Хмарно, невеликий дощ"></div>
    <p class="today-temp">+5&deg;C</p>
  </div>
</div>
<div class="description"> Вітер&nbsp;помірний,
  без опадів </div>
</body></html>`

const maintenancePage = `<html><body><h1>We'll be right back</h1></body></html>`
