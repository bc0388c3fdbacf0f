package network

import "net"

// MockDNSResolver is a test double for DNSResolver.
// A nil function field returns no records.
type MockDNSResolver struct {
	LookupSRVFn func(service, proto, name string) (string, []*net.SRV, error)
	LookupTXTFn func(name string) ([]string, error)
}

var _ DNSResolver = (*MockDNSResolver)(nil)

func (m *MockDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	if m.LookupSRVFn == nil {
		return "", nil, nil
	}
	return m.LookupSRVFn(service, proto, name)
}

func (m *MockDNSResolver) LookupTXT(name string) ([]string, error) {
	if m.LookupTXTFn == nil {
		return nil, nil
	}
	return m.LookupTXTFn(name)
}
