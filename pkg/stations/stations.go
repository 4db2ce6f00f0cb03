// Package stations holds the built-in FM station table. The ids are the
// stable identifiers used by the command surface and the persistent store;
// the physical key/input mapping that produces them lives outside this core.
package stations

import (
	"fmt"
	"sort"
	"strings"
)

// Station is one named entry of the table.
type Station struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FrequencyMHz float64 `json:"frequencyMHz"`
}

var table = []Station{
	{ID: "bfm_business", Name: "BFM Business", FrequencyMHz: 96.4},
	{ID: "cherie_fm", Name: "Cherie FM", FrequencyMHz: 91.3},
	{ID: "europe_1", Name: "Europe 1", FrequencyMHz: 104.7},
	{ID: "europe_2", Name: "Europe 2", FrequencyMHz: 103.5},
	{ID: "fip", Name: "FIP", FrequencyMHz: 105.1},
	{ID: "france_info", Name: "France Info", FrequencyMHz: 105.5},
	{ID: "france_inter", Name: "France Inter", FrequencyMHz: 87.6},
	{ID: "france_inter_2", Name: "France Inter Test 2", FrequencyMHz: 87.8},
	{ID: "le_mouv", Name: "Le Mouv", FrequencyMHz: 92.1},
	{ID: "nostalgie", Name: "Nostalgie", FrequencyMHz: 90.4},
	{ID: "nrj", Name: "NRJ", FrequencyMHz: 100.3},
	{ID: "radio_enghien", Name: "Radio Enghien", FrequencyMHz: 98.0},
	{ID: "rfm", Name: "RFM", FrequencyMHz: 103.9},
	{ID: "rire_et_chansons", Name: "Rire & Chansons", FrequencyMHz: 97.4},
	{ID: "rmc", Name: "RMC", FrequencyMHz: 103.1},
	{ID: "rtl", Name: "RTL", FrequencyMHz: 104.3},
	{ID: "rtl_2", Name: "RTL 2", FrequencyMHz: 105.9},
}

// All returns a copy of the station table, sorted by frequency.
func All() []Station {
	out := make([]Station, len(table))
	copy(out, table)
	sort.Slice(out, func(i, j int) bool {
		return out[i].FrequencyMHz < out[j].FrequencyMHz
	})
	return out
}

// ByID looks a station up by its id.
func ByID(id string) (Station, bool) {
	for _, s := range table {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// IDs returns all station ids.
func IDs() []string {
	ids := make([]string, 0, len(table))
	for _, s := range table {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

// ErrUnknown builds the error reported for an id that is not in the table.
func ErrUnknown(id string) error {
	return fmt.Errorf("unknown station %q (known: %s)", id, strings.Join(IDs(), ", "))
}
