package reconstruct

import (
	"fmt"

	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/rules"
)

func wind(o *out, w *model.SurfaceWind) {
	if w == nil {
		return
	}
	v := lexeme.Values{lexeme.Speed: w.Speed, lexeme.Unit: w.Unit}
	raw := "VRB"
	if w.Variable {
		v[lexeme.Kind] = "VRB"
	} else {
		raw = fmt.Sprintf("%03d", w.Direction)
		v[lexeme.Direction] = w.Direction
	}
	raw += fmt.Sprintf("%02d", w.Speed)
	if w.Gust > 0 {
		raw += fmt.Sprintf("G%02d", w.Gust)
		v[lexeme.Gust] = w.Gust
	}
	o.add(raw+w.Unit, lexeme.SurfaceWind, v)
}

// visibility emits CAVOK or the prevailing visibility.
func visibility(o *out, c *model.Conditions) {
	if c.CAVOK {
		o.add("CAVOK", lexeme.CAVOK, nil)
		return
	}
	if c.Visibility == nil {
		return
	}
	v := lexeme.Values{lexeme.Value: c.Visibility.Distance}
	if c.Visibility.Direction != "" {
		v[lexeme.Direction] = c.Visibility.Direction
	}
	o.add(fmt.Sprintf("%04d%s", c.Visibility.Distance, c.Visibility.Direction), lexeme.HorizontalVisibility, v)
}

func weather(o *out, c *model.Conditions) {
	for _, w := range c.Weather {
		v := lexeme.Values{lexeme.Code: w.Code}
		if w.Intensity != "" {
			v[lexeme.Intensity] = w.Intensity
		}
		o.add(w.Intensity+w.Code, lexeme.Weather, v)
	}
	if c.NoSignificantWeather {
		o.add("NSW", lexeme.NoSignificantWeather, nil)
	}
}

func clouds(o *out, c *model.Conditions) {
	for _, cl := range c.Clouds {
		v := lexeme.Values{lexeme.Cover: cl.Cover}
		raw := cl.Cover
		if cl.HasHeight() {
			raw += fmt.Sprintf("%03d", cl.Height)
			v[lexeme.Value] = cl.Height
		}
		if cl.Type != "" {
			raw += cl.Type
			v[lexeme.CloudType] = cl.Type
		}
		o.add(raw, lexeme.Cloud, v)
	}
}

// conditions emits a full set of forecast conditions in canonical order.
func conditions(o *out, c *model.Conditions) {
	wind(o, c.Wind)
	visibility(o, c)
	weather(o, c)
	clouds(o, c)
}

func temperature(t int) string { return rules.FormatTemperature(t) }
