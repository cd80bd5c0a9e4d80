package domain

// Bar is one discrete time step of the instrument sample stream.
// Fields are ordered for cache-line efficiency: hot fields (price/volume) first.
type Bar struct {
	// Hot fields (read every bar in the hotpath)
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Ts     int64   `json:"ts"` // Unix milliseconds
	// Cold fields
	Symbol string `json:"symbol"`
}

// HasPrice reports whether the bar carries a usable price.
// A missing or non-positive price is substituted with a neutral default
// downstream (zero return) instead of propagating a numeric fault.
func (b Bar) HasPrice() bool {
	return b.Price > 0
}

// EffectiveVolume returns the volume, or 1 when absent so that the
// log1p transform stays well-defined.
func (b Bar) EffectiveVolume() float64 {
	if b.Volume > 0 {
		return b.Volume
	}
	return 1
}

// MarketState holds the current externally observable state of a single market.
type MarketState struct {
	// Hot fields
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	LastUpdate int64   `json:"last_update"`
	Bars       uint64  `json:"bars"`
	// Cold fields
	Symbol string `json:"symbol"`
}
