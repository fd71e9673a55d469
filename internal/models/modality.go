package models

// Modality identifies one of the stimulus channels a trial can present.
type Modality string

const (
	ModalitySpatial Modality = "spatial"
	ModalityAudio   Modality = "audio"
	ModalityColor   Modality = "color"
	ModalityShape   Modality = "shape"
)

// AllModalities lists every modality the engine knows about, in a stable order.
var AllModalities = []Modality{ModalitySpatial, ModalityAudio, ModalityColor, ModalityShape}

// IsValid reports whether m is one of the known modalities.
func (m Modality) IsValid() bool {
	switch m {
	case ModalitySpatial, ModalityAudio, ModalityColor, ModalityShape:
		return true
	}
	return false
}

func (m Modality) String() string {
	return string(m)
}
