package probe

import (
	"context"
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer starts an in-process UDP DNS server on a random port.
func startTestServer(t *testing.T, handler func(dns.ResponseWriter, *dns.Msg)) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &dns.Server{PacketConn: pc, Handler: dns.HandlerFunc(handler)}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func reply(w dns.ResponseWriter, r *dns.Msg, rcode int, answers ...dns.RR) {
	m := new(dns.Msg)
	m.SetRcode(r, rcode)
	m.Answer = answers
	_ = w.WriteMsg(m)
}

func TestDiagnose_Resolves(t *testing.T) {
	addr := startTestServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		if r.Question[0].Qtype != dns.TypeA {
			reply(w, r, dns.RcodeSuccess)
			return
		}
		rr, _ := dns.NewRR("example.com. 60 IN A 93.184.216.34")
		reply(w, r, dns.RcodeSuccess, rr)
	})

	st := NewDNSDiagnoserWithServers(addr).Diagnose(context.Background(), "https://example.com/health")

	assert.Equal(t, "example.com", st.Domain)
	assert.Equal(t, DNSResolves, st.Class)
	assert.True(t, st.HasAOrAAAA)
	require.Len(t, st.IPs, 1)
	assert.Equal(t, "93.184.216.34", st.IPs[0].String())
	assert.Equal(t, addr, st.Server)
}

func TestDiagnose_FallsBackToAAAA(t *testing.T) {
	addr := startTestServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		if r.Question[0].Qtype == dns.TypeAAAA {
			rr, _ := dns.NewRR("v6.example.com. 60 IN AAAA 2001:db8::1")
			reply(w, r, dns.RcodeSuccess, rr)
			return
		}
		reply(w, r, dns.RcodeSuccess)
	})

	st := NewDNSDiagnoserWithServers(addr).Diagnose(context.Background(), "https://v6.example.com")
	assert.Equal(t, DNSResolves, st.Class)
	require.Len(t, st.IPs, 1)
	assert.Equal(t, "2001:db8::1", st.IPs[0].String())
}

func TestDiagnose_NXDomain(t *testing.T) {
	addr := startTestServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		reply(w, r, dns.RcodeNameError)
	})

	st := NewDNSDiagnoserWithServers(addr).Diagnose(context.Background(), "https://nope.invalid")
	assert.Equal(t, DNSNXDomain, st.Class)
	assert.False(t, st.HasAOrAAAA)
}

func TestDiagnose_NoAddressRecords(t *testing.T) {
	addr := startTestServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		reply(w, r, dns.RcodeSuccess)
	})

	st := NewDNSDiagnoserWithServers(addr).Diagnose(context.Background(), "https://mail-only.example.com")
	assert.Equal(t, DNSNoARecord, st.Class)
}

func TestDiagnose_ServerFailure(t *testing.T) {
	addr := startTestServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		reply(w, r, dns.RcodeServerFailure)
	})

	st := NewDNSDiagnoserWithServers(addr).Diagnose(context.Background(), "https://broken.example.com")
	assert.Equal(t, DNSServfailTimeout, st.Class)
	assert.Contains(t, st.ResolverError, "SERVFAIL")
}

func TestDiagnose_NoServers(t *testing.T) {
	st := NewDNSDiagnoserWithServers().Diagnose(context.Background(), "https://example.com")
	assert.Equal(t, DNSServfailTimeout, st.Class)
	assert.NotEmpty(t, st.ResolverError)
}

func TestDiagnose_IPLiteralAndInvalid(t *testing.T) {
	d := NewDNSDiagnoserWithServers()

	st := d.Diagnose(context.Background(), "http://127.0.0.1:8080/")
	assert.Equal(t, DNSResolves, st.Class)

	st = d.Diagnose(context.Background(), "")
	assert.Equal(t, DNSInvalidName, st.Class)
}
