package screen

import (
	"github.com/okian/lojista/internal/domain/model"
)

// User-visible texts.
const (
	TextLoading          = "Carregando dados do lojista..."
	TextPermissionDenied = "Permissão de localização negada"
	TextFixUnavailable   = "Não foi possível obter a localização"
	TextProfileError     = "Erro ao obter detalhes do lojista."
	TextProductsError    = "Não foi possível carregar as postagens."
	TextMissingMerchant  = "Lojista não informado"
	TextFollowing        = "Seguindo Lojista!"
	TextRatingSent       = "Avaliação enviada"
	TextRatingFailed     = "Não foi possível enviar a avaliação."
)

// PaneStatus tags the profile pane.
type PaneStatus int

// Profile pane variants.
const (
	PaneLoading PaneStatus = iota // no profile yet, fetch pending
	PaneReady                     // profile present
	PaneError                     // no profile, last attempt failed
)

func (s PaneStatus) String() string {
	switch s {
	case PaneReady:
		return "ready"
	case PaneError:
		return "error"
	default:
		return "loading"
	}
}

// ProfilePane is the explicit Loading | Ready(profile) | Error(message) variant.
// A Ready pane stays Ready when a later fetch fails; the failure shows up in
// State.ErrorMessage instead.
type ProfilePane struct {
	Status  PaneStatus
	Profile model.MerchantProfile // meaningful when Status == PaneReady
}

// Ready returns the profile when the pane holds one.
func (p ProfilePane) Ready() (model.MerchantProfile, bool) {
	return p.Profile, p.Status == PaneReady
}

// State is a snapshot of everything the screen renders.
type State struct {
	MerchantID  string
	Generation  uint64
	Coordinates *model.Coordinates

	Profile  ProfilePane
	Products []model.Product

	// ErrorMessage is the single user-visible error slot, fed by location and
	// profile failures only.
	ErrorMessage string

	// ProductsNotice is shown next to the product section when the list could
	// not be loaded. It never touches ErrorMessage.
	ProductsNotice string

	// Notice carries transient feedback for follow and rating actions.
	Notice string

	Following bool

	RatingOpen bool
	Stars      int
	Feedback   string
}
