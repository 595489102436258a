package ines

// NTMirroring is a nametable mirroring arrangement.
type NTMirroring uint8

const (
	HorzMirroring NTMirroring = iota
	VertMirroring
	OnlyAScreen
	OnlyBScreen
	FourScreen
)

func (m NTMirroring) String() string {
	switch m {
	case HorzMirroring:
		return "Horizontal"
	case VertMirroring:
		return "Vertical"
	case OnlyAScreen:
		return "OnlyAScreen"
	case OnlyBScreen:
		return "OnlyBScreen"
	case FourScreen:
		return "FourScreen"
	}
	return "NTMirroring(?)"
}
