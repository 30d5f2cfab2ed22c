package flow

import (
	"reflect"
	"testing"
)

func TestPayloadFor(t *testing.T) {
	app := AppInfo{Name: "YouTube Music", Origin: "music.youtube.com"}

	tests := []struct {
		state State
		want  Payload
	}{
		{StateInitial, Payload{Label: "Install", Enabled: true, Variant: VariantInstall}},
		{StateLoadingManifest, Payload{Label: "Loading…", Busy: true, Variant: VariantInstallBusy}},
		{StateReadyToInstall, Payload{
			Title: "Install YouTube Music", Subtitle: "from music.youtube.com",
			Enabled: true, Variant: VariantInstallFull,
		}},
		{StateInstalling, Payload{
			Title: "Installing YouTube Music…", Subtitle: "from music.youtube.com",
			Busy: true, Variant: VariantInstallFullBusy,
		}},
		{StateInstalled, Payload{
			Title: "Launch YouTube Music", Subtitle: "from music.youtube.com",
			Enabled: true, Variant: VariantInstalled,
		}},
		{StateFailed, Payload{Label: "Install failed. Retry", Enabled: true, Variant: VariantFailed}},
		{StateNotAllowed, Payload{Label: "Installation not allowed", Variant: VariantNotAllowed}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			got, err := PayloadFor(tt.state, app)
			if err != nil {
				t.Fatalf("PayloadFor() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PayloadFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPayloadFor_EnabledOnlyWhenActionable(t *testing.T) {
	for _, s := range AllStates() {
		p, err := PayloadFor(s, AppInfo{})
		if err != nil {
			t.Fatalf("PayloadFor(%s) error = %v", s, err)
		}
		if p.Enabled == (s.Transient() || s == StateNotAllowed) {
			t.Errorf("PayloadFor(%s).Enabled = %v", s, p.Enabled)
		}
		if p.Busy != s.Transient() {
			t.Errorf("PayloadFor(%s).Busy = %v", s, p.Busy)
		}
		if p.Text() == "" {
			t.Errorf("PayloadFor(%s).Text() is empty", s)
		}
	}
}

func TestPayloadFor_Defaults(t *testing.T) {
	p, err := PayloadFor(StateReadyToInstall, AppInfo{})
	if err != nil {
		t.Fatalf("PayloadFor() error = %v", err)
	}
	if p.Title != "Install app" {
		t.Errorf("Title = %q, want %q", p.Title, "Install app")
	}
	if p.Subtitle != "" {
		t.Errorf("Subtitle = %q, want empty", p.Subtitle)
	}
}

func TestPayloadFor_Unknown(t *testing.T) {
	_, err := PayloadFor(State(99), AppInfo{})
	if !IsUnknownState(err) {
		t.Errorf("PayloadFor(99) error = %v, want UnknownStateError", err)
	}
}

func TestPayload_Classes(t *testing.T) {
	tests := map[State][]string{
		StateInitial:         {"install"},
		StateLoadingManifest: {"install", "installing"},
		StateReadyToInstall:  {"install", "full"},
		StateInstalling:      {"install", "full", "installing"},
		StateInstalled:       {"installed", "full"},
		StateFailed:          {"install", "failed"},
		StateNotAllowed:      {"install", "not-allowed"},
	}

	for state, want := range tests {
		p, _ := PayloadFor(state, AppInfo{})
		if got := p.Classes(); !reflect.DeepEqual(got, want) {
			t.Errorf("%s Classes() = %v, want %v", state, got, want)
		}
	}
}
