package network

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

// DNSResolver defines the interface for DNS lookups.
// This allows tests to mock DNS resolution.
type DNSResolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)

	// LookupTXT looks up TXT records for the given name.
	LookupTXT(name string) ([]string, error)
}

// defaultDNSResolver wraps the standard net package DNS functions.
type defaultDNSResolver struct{}

func (d *defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

func (d *defaultDNSResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultDNSResolver is the production DNS resolver using the net package.
var DefaultDNSResolver DNSResolver = &defaultDNSResolver{}

const (
	// SRVService is the SRV service label of Phantom Archive nodes: _phantom._tcp.{domain}.
	SRVService = "phantom"

	// txtPrefix marks the contract TXT record at _phantom.{domain}.
	txtPrefix = "phantom="
)

// DiscoverEndpoints resolves the node endpoints of domain from its SRV
// records. Endpoints are "http://host:port" URLs sorted by priority
// (ascending), then by weight (descending).
func DiscoverEndpoints(domain string, resolver DNSResolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}
	if resolver == nil {
		resolver = DefaultDNSResolver
	}

	_, addrs, err := resolver.LookupSRV(SRVService, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, SRVService, domain, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, SRVService, domain)
	}

	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = "http://" + net.JoinHostPort(host, fmt.Sprint(srv.Port))
	}
	return endpoints, nil
}

// DiscoverContract resolves the archive address published in the
// _phantom.{domain} TXT record ("phantom=0x...").
func DiscoverContract(domain string, resolver DNSResolver) (addrcrypt.Address, error) {
	if domain == "" {
		return addrcrypt.Address{}, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}
	if resolver == nil {
		resolver = DefaultDNSResolver
	}

	name := "_phantom." + domain
	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return addrcrypt.Address{}, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, name, err)
	}

	for _, txt := range txts {
		txt = strings.TrimSpace(txt)
		if !strings.HasPrefix(txt, txtPrefix) {
			continue
		}
		a, err := addrcrypt.ParseAddress(strings.TrimSpace(strings.TrimPrefix(txt, txtPrefix)))
		if err != nil {
			return addrcrypt.Address{}, fmt.Errorf("%w: TXT record for %s: %w", ErrNoContractRecord, name, err)
		}
		return a, nil
	}
	return addrcrypt.Address{}, fmt.Errorf("%w: no %s TXT record for %s", ErrNoContractRecord, txtPrefix, name)
}
