package eos

import "fmt"

// Phase identifies the material phase of a layer. Liquid is zero so that
// phase arithmetic in the freeze solvers keeps its sign convention.
type Phase int

const (
	Liquid    Phase = 0
	IceIh     Phase = 1
	IceII     Phase = 2
	IceIII    Phase = 3
	IceV      Phase = 5
	IceVI     Phase = 6
	Clathrate Phase = 30
	Silicate  Phase = 50
	Iron      Phase = 100
)

func (p Phase) String() string {
	switch p {
	case Liquid:
		return "liquid"
	case IceIh:
		return "ice Ih"
	case IceII:
		return "ice II"
	case IceIII:
		return "ice III"
	case IceV:
		return "ice V"
	case IceVI:
		return "ice VI"
	case Clathrate:
		return "clathrate"
	case Silicate:
		return "silicate"
	case Iron:
		return "iron"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Solid reports whether the phase is any ice polymorph or clathrate.
func (p Phase) Solid() bool {
	return p != Liquid && p != Silicate && p != Iron
}
