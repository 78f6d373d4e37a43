// Package export writes evaluated body profiles as JSON for downstream
// analysis and plotting tools.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/icyworlds/interior/internal/layers"
	"github.com/icyworlds/interior/internal/moi"
)

// ProfileData is the serialized form of one evaluated body model: the
// radial layer arrays, the located transition pressures, and the
// moment-of-inertia match summary when matching succeeded.
type ProfileData struct {
	Name string `json:"name"`

	RM      []float64 `json:"r_m"`
	ZM      []float64 `json:"z_m"`
	PMPa    []float64 `json:"p_mpa"`
	TK      []float64 `json:"t_k"`
	RhoKgM3 []float64 `json:"rho_kgm3"`
	GMS2    []float64 `json:"g_ms2"`
	Phase   []int     `json:"phase"`

	PbMPa        float64 `json:"pb_mpa"`
	PbIMPa       float64 `json:"pbi_mpa"`
	PbIIIMPa     float64 `json:"pbiii_mpa,omitempty"`
	PbVMPa       float64 `json:"pbv_mpa,omitempty"`
	PbClathMPa   float64 `json:"pbclath_mpa,omitempty"`
	QFromMantleW float64 `json:"q_from_mantle_w"`

	NHydro int `json:"n_hydro"`
	NSil   int `json:"n_sil"`
	NTotal int `json:"n_total"`

	NonEquilibrium bool `json:"non_equilibrium,omitempty"`

	CMR2       float64 `json:"cmr2,omitempty"`
	RSilM      float64 `json:"r_sil_m,omitempty"`
	RCoreM     float64 `json:"r_core_m,omitempty"`
	RhoSilKgM3 float64 `json:"rho_sil_kgm3,omitempty"`
	NMatched   int     `json:"n_matched,omitempty"`
}

func build(name string, p *layers.Profile, match *moi.Match) ProfileData {
	data := ProfileData{
		Name:         name,
		RM:           p.R,
		ZM:           p.Z,
		PMPa:         p.P,
		TK:           p.T,
		RhoKgM3:      p.Rho,
		GMS2:         p.G,
		Phase:        make([]int, p.Len()),
		PbMPa:        p.PbMPa,
		PbIMPa:       p.PbIMPa,
		PbIIIMPa:     p.PbIIIMPa,
		PbVMPa:       p.PbVMPa,
		PbClathMPa:   p.PbClathMPa,
		QFromMantleW: p.QFromMantleW,
		NHydro:       p.NHydro,
		NSil:         p.NSil,
		NTotal:       p.NTotal,

		NonEquilibrium: p.NonEquilibrium,
	}
	for i, ph := range p.Phase {
		data.Phase[i] = int(ph)
	}
	if match != nil {
		data.CMR2 = match.CMR2
		data.RSilM = match.RSilM
		data.RCoreM = match.RCoreM
		data.RhoSilKgM3 = match.RhoSilKgM3
		data.NMatched = match.NMatched
	}
	return data
}

// WriteJSON serializes the profile to w, indented.
func WriteJSON(w io.Writer, name string, p *layers.Profile, match *moi.Match) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(build(name, p, match))
}

// ExportJSON writes the profile to a file at path.
func ExportJSON(path, name string, p *layers.Profile, match *moi.Match) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, name, p, match)
}
