package network

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

func TestDiscoverEndpoints_Sorted(t *testing.T) {
	resolver := &MockDNSResolver{
		LookupSRVFn: func(service, proto, name string) (string, []*net.SRV, error) {
			assert.Equal(t, "phantom", service)
			assert.Equal(t, "tcp", proto)
			assert.Equal(t, "example.com", name)
			return "", []*net.SRV{
				{Target: "backup.example.com.", Port: 8545, Priority: 20, Weight: 0},
				{Target: "light.example.com.", Port: 8545, Priority: 10, Weight: 5},
				{Target: "heavy.example.com.", Port: 9545, Priority: 10, Weight: 50},
			}, nil
		},
	}

	endpoints, err := DiscoverEndpoints("example.com", resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://heavy.example.com:9545",
		"http://light.example.com:8545",
		"http://backup.example.com:8545",
	}, endpoints)
}

func TestDiscoverEndpoints_Errors(t *testing.T) {
	_, err := DiscoverEndpoints("", &MockDNSResolver{})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = DiscoverEndpoints("example.com", &MockDNSResolver{})
	assert.ErrorIs(t, err, ErrNoEndpoints)

	lookupErr := errors.New("servfail")
	_, err = DiscoverEndpoints("example.com", &MockDNSResolver{
		LookupSRVFn: func(string, string, string) (string, []*net.SRV, error) { return "", nil, lookupErr },
	})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
	assert.ErrorIs(t, err, lookupErr)
}

func TestDiscoverContract(t *testing.T) {
	want := addrcrypt.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

	tests := []struct {
		name    string
		txts    []string
		want    addrcrypt.Address
		wantErr error
	}{
		{"single record", []string{"phantom=0x5FbDB2315678afecb367f032d93F642f64180aa3"}, want, nil},
		{"skips unrelated", []string{"v=spf1 -all", "  phantom= 5fbdb2315678afecb367f032d93f642f64180aa3 "}, want, nil},
		{"no record", []string{"v=spf1 -all"}, addrcrypt.Address{}, ErrNoContractRecord},
		{"bad address", []string{"phantom=0x1234"}, addrcrypt.Address{}, addrcrypt.ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &MockDNSResolver{
				LookupTXTFn: func(name string) ([]string, error) {
					assert.Equal(t, "_phantom.example.com", name)
					return tt.txts, nil
				},
			}
			got, err := DiscoverContract("example.com", resolver)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// startDNS serves a fixed zone on a local UDP port. authenticated controls
// the AD flag on every answer.
func startDNS(t *testing.T, authenticated bool) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.AuthenticatedData = authenticated

		q := r.Question[0]
		switch {
		case q.Qtype == dns.TypeSRV && q.Name == "_phantom._tcp.example.com.":
			m.Answer = append(m.Answer, &dns.SRV{
				Hdr:      dns.RR_Header{Name: q.Name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 60},
				Priority: 10, Weight: 1, Port: 8545, Target: "node.example.com.",
			})
		case q.Qtype == dns.TypeTXT && q.Name == "_phantom.example.com.":
			m.Answer = append(m.Answer, &dns.TXT{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 60},
				Txt: []string{"phantom=0x5fbdb2315678afecb367f0", "32d93f642f64180aa3"},
			})
		default:
			m.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestDNSSECResolver_Defaults(t *testing.T) {
	assert.Equal(t, "8.8.8.8:53", NewDNSSECResolver("").Upstream)
	assert.Equal(t, "1.1.1.1:53", NewDNSSECResolver("1.1.1.1:53").Upstream)
}

func TestDNSSECResolver_Authenticated(t *testing.T) {
	r := NewDNSSECResolver(startDNS(t, true))
	r.Timeout = 2 * time.Second

	endpoints, err := DiscoverEndpoints("example.com", r)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://node.example.com:8545"}, endpoints)

	contract, err := DiscoverContract("example.com", r)
	require.NoError(t, err)
	assert.Equal(t, addrcrypt.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"), contract)

	_, err = DiscoverEndpoints("missing.example.com", r)
	assert.ErrorIs(t, err, ErrNoEndpoints)
}

func TestDNSSECResolver_RequiresADFlag(t *testing.T) {
	r := NewDNSSECResolver(startDNS(t, false))
	r.Timeout = 2 * time.Second

	_, err := DiscoverEndpoints("example.com", r)
	assert.ErrorIs(t, err, ErrDNSSECValidationFailed)

	_, err = r.LookupTXT("_phantom.example.com")
	assert.ErrorIs(t, err, ErrDNSSECValidationFailed)
}
