package launch

import (
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/config"
	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
)

// Recording records every launch in the registry before delegating.
// Launches are filed under AppID, or under the installed app whose start URL
// matches the target when AppID is empty.
type Recording struct {
	Next     flow.Navigator
	Registry *config.Registry
	AppID    string
}

// Open implements flow.Navigator. Registry failures are logged, never returned.
func (r *Recording) Open(target string) error {
	if r.Registry != nil {
		id := r.AppID
		if id == "" {
			if found, ok := r.Registry.FindByStartURL(target); ok {
				id = found
			} else {
				id = target
			}
		}
		r.Registry.RecordLaunch(id, target)
		if err := r.Registry.Save(); err != nil {
			logging.Warn("Failed to save launch statistics", zap.Error(err))
		}
	}
	if r.Next == nil {
		return nil
	}
	return r.Next.Open(target)
}
