package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DNS classes reported by Diagnose.
const (
	DNSResolves        = "RESOLVES"
	DNSNXDomain        = "NXDOMAIN"
	DNSNoARecord       = "NO_A_RECORD"
	DNSServfailTimeout = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName     = "INVALID_NAME"
)

type DNSStatus struct {
	Domain        string
	HasAOrAAAA    bool
	IPs           []net.IP
	CNAME         string
	Class         string
	Server        string
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// DNSDiagnoser explains why a target may be unreachable by querying its host
// directly against the configured nameservers.
type DNSDiagnoser struct {
	Client  *dns.Client
	Servers []string
}

// NewDNSDiagnoser reads nameservers from /etc/resolv.conf, falling back to
// the local resolver when the file is missing.
func NewDNSDiagnoser() *DNSDiagnoser {
	servers := []string{"127.0.0.1:53"}
	if cc, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cc.Servers) > 0 {
		servers = servers[:0]
		for _, s := range cc.Servers {
			servers = append(servers, net.JoinHostPort(s, cc.Port))
		}
	}
	return NewDNSDiagnoserWithServers(servers...)
}

func NewDNSDiagnoserWithServers(servers ...string) *DNSDiagnoser {
	return &DNSDiagnoser{
		Client:  &dns.Client{Timeout: dnsTimeout},
		Servers: servers,
	}
}

func (d *DNSDiagnoser) Diagnose(ctx context.Context, target string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(extractHost(target))}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = DNSInvalidName
		return s
	}
	if ip := net.ParseIP(s.Domain); ip != nil {
		s.HasAOrAAAA = true
		s.IPs = []net.IP{ip}
		s.Class = DNSResolves
		return s
	}
	if _, ok := dns.IsDomainName(s.Domain); !ok {
		s.Class = DNSInvalidName
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, server, err := d.exchange(ctx, s.Domain, qtype)
		s.Server = server
		if err != nil {
			s.ResolverError = err.Error()
			s.Class = DNSServfailTimeout
			return s
		}
		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			s.Class = DNSNXDomain
			return s
		default:
			s.ResolverError = "rcode " + dns.RcodeToString[resp.Rcode]
			s.Class = DNSServfailTimeout
			return s
		}
		for _, rr := range resp.Answer {
			switch v := rr.(type) {
			case *dns.A:
				s.IPs = append(s.IPs, v.A)
			case *dns.AAAA:
				s.IPs = append(s.IPs, v.AAAA)
			case *dns.CNAME:
				if s.CNAME == "" {
					s.CNAME = strings.TrimSuffix(v.Target, ".")
				}
			}
		}
		if len(s.IPs) > 0 {
			s.HasAOrAAAA = true
			s.Class = DNSResolves
			return s
		}
	}
	s.Class = DNSNoARecord
	return s
}

// exchange tries each server in turn and returns the first answer.
func (d *DNSDiagnoser) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range d.Servers {
		resp, _, err := d.Client.ExchangeContext(ctx, msg, server)
		if err == nil && resp != nil {
			return resp, server, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no nameservers configured")
	}
	return nil, "", lastErr
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
