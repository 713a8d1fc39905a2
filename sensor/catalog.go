// Package sensor maps derived price statistics onto the named sensors
// published over MQTT and served by the dashboard. Keys are stable,
// renaming one breaks downstream automations.
package sensor

import (
	"github.com/avdberg/spotwatch-go/types"
)

type Descriptor struct {
	// Key identifies the sensor in config, MQTT topics and the API.
	Key       string
	Name      string
	Commodity types.Commodity
	// Stat is the statistic evaluated for this sensor, see the prices
	// package for the registry.
	Stat      string
	Unit      string
	Precision int
	// DeviceClass hints Home Assistant how to render the sensor.
	DeviceClass string
}

const (
	deviceClassMonetary = "monetary"

	precisionElectricity = 3
	precisionGas         = 2
)

func electricitySensor(key, name, stat string) Descriptor {
	return Descriptor{
		Key:         key,
		Name:        name,
		Commodity:   types.CommodityElectricity,
		Stat:        stat,
		Unit:        types.CommodityElectricity.Unit(),
		Precision:   precisionElectricity,
		DeviceClass: deviceClassMonetary,
	}
}

func gasSensor(key, name, stat string) Descriptor {
	return Descriptor{
		Key:         key,
		Name:        name,
		Commodity:   types.CommodityGas,
		Stat:        stat,
		Unit:        types.CommodityGas.Unit(),
		Precision:   precisionGas,
		DeviceClass: deviceClassMonetary,
	}
}

// catalog lists every sensor the app can publish. Gas has no upcoming
// or all-hours sensors, the feed publishes at most two gas days and
// day boundaries make them the same thing.
var catalog = []Descriptor{
	electricitySensor("elec_markup", "Current electricity price (all-in)", "current_total"),
	electricitySensor("elec_market", "Current electricity market price", "current_market"),
	electricitySensor("elec_tax", "Current electricity price including tax", "current_market_with_tax"),
	electricitySensor("elec_tax_only", "Current electricity tax", "current_tax"),
	electricitySensor("elec_sourcing", "Current electricity sourcing markup", "current_markup"),
	{
		Key:       "elec_market_percent_tax",
		Name:      "Current electricity tax percentage",
		Commodity: types.CommodityElectricity,
		Stat:      "current_tax_share",
		Unit:      "%",
		Precision: 1,
	},

	electricitySensor("elec_previoushour", "Previous hour electricity price (all-in)", "previous_total"),
	electricitySensor("elec_previoushour_market", "Previous hour electricity market price", "previous_market"),
	electricitySensor("elec_nexthour", "Next hour electricity price (all-in)", "next_total"),
	electricitySensor("elec_nexthour_market", "Next hour electricity market price", "next_market"),

	electricitySensor("elec_min", "Lowest electricity price today (all-in)", "today_min"),
	electricitySensor("elec_max", "Highest electricity price today (all-in)", "today_max"),
	electricitySensor("elec_avg", "Average electricity price today (all-in)", "today_avg"),
	electricitySensor("elec_avg_market", "Average electricity market price today", "today_avg_market"),
	electricitySensor("elec_avg_tax", "Average electricity price today including tax", "today_avg_with_tax"),

	electricitySensor("elec_tomorrow_min", "Lowest electricity price tomorrow (all-in)", "tomorrow_min"),
	electricitySensor("elec_tomorrow_max", "Highest electricity price tomorrow (all-in)", "tomorrow_max"),
	electricitySensor("elec_tomorrow_avg", "Average electricity price tomorrow (all-in)", "tomorrow_avg"),
	electricitySensor("elec_tomorrow_avg_market", "Average electricity market price tomorrow", "tomorrow_avg_market"),
	electricitySensor("elec_tomorrow_avg_tax", "Average electricity price tomorrow including tax", "tomorrow_avg_with_tax"),

	electricitySensor("elec_upcoming_min", "Lowest electricity price upcoming hours (all-in)", "upcoming_min"),
	electricitySensor("elec_upcoming_max", "Highest electricity price upcoming hours (all-in)", "upcoming_max"),
	electricitySensor("elec_upcoming_avg", "Average electricity price upcoming hours (all-in)", "upcoming_avg"),
	electricitySensor("elec_upcoming_avg_market", "Average electricity market price upcoming hours", "upcoming_avg_market"),

	electricitySensor("elec_all_min", "Lowest electricity price all hours (all-in)", "all_min"),
	electricitySensor("elec_all_max", "Highest electricity price all hours (all-in)", "all_max"),
	electricitySensor("elec_all_avg", "Average electricity price all hours (all-in)", "all_avg"),

	{
		Key:       "elec_hourcount",
		Name:      "Electricity hours cached",
		Commodity: types.CommodityElectricity,
		Stat:      "hour_count",
		Precision: 0,
	},

	gasSensor("gas_markup", "Current gas price (all-in)", "current_total"),
	gasSensor("gas_market", "Current gas market price", "current_market"),
	gasSensor("gas_tax", "Current gas price including tax", "current_market_with_tax"),
	gasSensor("gas_tax_only", "Current gas tax", "current_tax"),
	gasSensor("gas_sourcing", "Current gas sourcing markup", "current_markup"),
	{
		Key:       "gas_market_percent_tax",
		Name:      "Current gas tax percentage",
		Commodity: types.CommodityGas,
		Stat:      "current_tax_share",
		Unit:      "%",
		Precision: 1,
	},

	gasSensor("gas_previoushour", "Previous hour gas price (all-in)", "previous_total"),
	gasSensor("gas_nexthour", "Next hour gas price (all-in)", "next_total"),

	gasSensor("gas_min", "Lowest gas price today (all-in)", "today_min"),
	gasSensor("gas_max", "Highest gas price today (all-in)", "today_max"),
	gasSensor("gas_avg", "Average gas price today (all-in)", "today_avg"),
	gasSensor("gas_avg_market", "Average gas market price today", "today_avg_market"),
	gasSensor("gas_avg_tax", "Average gas price today including tax", "today_avg_with_tax"),

	gasSensor("gas_tomorrow_min", "Lowest gas price tomorrow (all-in)", "tomorrow_min"),
	gasSensor("gas_tomorrow_max", "Highest gas price tomorrow (all-in)", "tomorrow_max"),
	gasSensor("gas_tomorrow_avg", "Average gas price tomorrow (all-in)", "tomorrow_avg"),
	gasSensor("gas_tomorrow_avg_market", "Average gas market price tomorrow", "tomorrow_avg_market"),
	gasSensor("gas_tomorrow_avg_tax", "Average gas price tomorrow including tax", "tomorrow_avg_with_tax"),

	{
		Key:       "gas_hourcount",
		Name:      "Gas hours cached",
		Commodity: types.CommodityGas,
		Stat:      "hour_count",
		Precision: 0,
	},
}

// Catalog returns a copy of the full sensor catalog.
func Catalog() []Descriptor {
	return append([]Descriptor(nil), catalog...)
}
