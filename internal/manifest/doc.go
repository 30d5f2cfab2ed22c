// Package manifest describes installable applications and loads their
// descriptors.
//
// A Manifest carries the metadata the install flow needs before installation
// can proceed: a display name, the canonical start URL (which also yields the
// origin shown to the user) and optional icons.
//
// # Loaders
//
// Three loaders implement the Loader interface:
//   - FileLoader: a local YAML or JSON descriptor
//   - HTTPLoader: a web app manifest fetched over HTTP(S)
//   - StaticLoader: an in-memory manifest (used for the demo app and tests)
//
// Example:
//
//	loader := manifest.NewHTTPLoader("https://music.youtube.com/manifest.webmanifest")
//	m, err := loader.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(m.DisplayName(), m.Origin())
package manifest
