// Package discovery finds installable applications on the local network.
//
// Applications advertise themselves as "_http._tcp" mDNS services carrying a
// "manifest" TXT record, either a path on the advertising host or an
// absolute URL. The scanner collects these advertisements with
// github.com/grandcat/zeroconf and turns each into a Source whose
// ManifestURL can be handed to manifest.NewHTTPLoader.
//
// # Usage Example
//
//	sources, err := discovery.QuickScan(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range sources {
//	    fmt.Printf("%s -> %s\n", s.Instance, s.ManifestURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Advertisers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
