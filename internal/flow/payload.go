package flow

import "fmt"

// Variant tags the visual treatment of the control
type Variant string

const (
	VariantInstall         Variant = "install"
	VariantInstallBusy     Variant = "install-busy"
	VariantInstallFull     Variant = "install-full"
	VariantInstallFullBusy Variant = "install-full-busy"
	VariantInstalled       Variant = "installed"
	VariantFailed          Variant = "failed"
	VariantNotAllowed      Variant = "not-allowed"
)

// AppInfo is the application data shown by the control
type AppInfo struct {
	Name   string
	Origin string
}

// Payload is everything a Renderer needs to present one state.
// It is derived from the state and never stored by the Controller.
type Payload struct {
	// Label is the single-line text (empty when Title is used)
	Label string `json:"label,omitempty"`

	// Title and Subtitle form the two-line "full" presentation
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	Enabled bool    `json:"enabled"`
	Busy    bool    `json:"busy"`
	Variant Variant `json:"variant"`
}

// Text returns the primary text of the payload
func (p Payload) Text() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Label
}

// Classes returns the CSS class set for web hosts
func (p Payload) Classes() []string {
	switch p.Variant {
	case VariantInstall:
		return []string{"install"}
	case VariantInstallBusy:
		return []string{"install", "installing"}
	case VariantInstallFull:
		return []string{"install", "full"}
	case VariantInstallFullBusy:
		return []string{"install", "full", "installing"}
	case VariantInstalled:
		return []string{"installed", "full"}
	case VariantFailed:
		return []string{"install", "failed"}
	case VariantNotAllowed:
		return []string{"install", "not-allowed"}
	default:
		return nil
	}
}

// PayloadFor derives the display payload for a state.
// The switch is exhaustive over the defined states; anything else is an
// *UnknownStateError.
func PayloadFor(state State, app AppInfo) (Payload, error) {
	name := app.Name
	if name == "" {
		name = "app"
	}
	var from string
	if app.Origin != "" {
		from = "from " + app.Origin
	}

	switch state {
	case StateInitial:
		return Payload{Label: "Install", Enabled: true, Variant: VariantInstall}, nil
	case StateLoadingManifest:
		return Payload{Label: "Loading…", Busy: true, Variant: VariantInstallBusy}, nil
	case StateReadyToInstall:
		return Payload{
			Title:    fmt.Sprintf("Install %s", name),
			Subtitle: from,
			Enabled:  true,
			Variant:  VariantInstallFull,
		}, nil
	case StateInstalling:
		return Payload{
			Title:    fmt.Sprintf("Installing %s…", name),
			Subtitle: from,
			Busy:     true,
			Variant:  VariantInstallFullBusy,
		}, nil
	case StateInstalled:
		return Payload{
			Title:    fmt.Sprintf("Launch %s", name),
			Subtitle: from,
			Enabled:  true,
			Variant:  VariantInstalled,
		}, nil
	case StateFailed:
		return Payload{Label: "Install failed. Retry", Enabled: true, Variant: VariantFailed}, nil
	case StateNotAllowed:
		return Payload{Label: "Installation not allowed", Variant: VariantNotAllowed}, nil
	default:
		return Payload{}, &UnknownStateError{State: state}
	}
}
