package explorer

import "github.com/depscope/depscope/pkg/model"

// CenterOpts are the presentation parameters for a center/fit view action.
type CenterOpts struct {
	Padding float64 `json:"padding"`
	MaxZoom float64 `json:"max_zoom"`
	Animate bool    `json:"animate"`
}

// DefaultCenterOpts is used for every center action the controller issues.
var DefaultCenterOpts = CenterOpts{Padding: 20, MaxZoom: 1, Animate: true}

// View is the rendering surface the controller drives.
//
// Commit submits the updated model for display; the discrete view actions
// adjust selection and viewport without touching the model. Implementations
// must tolerate being called from multiple goroutines, though the controller
// never issues two view actions concurrently.
type View interface {
	// Commit propagates the current model to the rendering surface.
	Commit(g *model.Graph)

	// Select replaces the current selection with the given element IDs.
	Select(ids []string)

	// SelectAll selects or deselects every element.
	SelectAll(selected bool)

	// Center fits the viewport around the given element IDs.
	Center(ids []string, opts CenterOpts)
}

// NopView is a View that ignores every call. Useful for headless runs where
// resolution results are read from the graph afterwards.
type NopView struct{}

func (NopView) Commit(*model.Graph)         {}
func (NopView) Select([]string)             {}
func (NopView) SelectAll(bool)              {}
func (NopView) Center([]string, CenterOpts) {}

var _ View = NopView{}
