package notifier

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/close-games/internal/game"
)

// relay is a minimal SMTP server that records every command it receives.
// It never completes a TLS handshake.
type relay struct {
	ln       net.Listener
	ehlo     string
	starttls string

	mu   sync.Mutex
	cmds []string
	done chan struct{}
}

func startRelay(t *testing.T, offerSTARTTLS bool) *relay {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	r := &relay{
		ln:       ln,
		ehlo:     "250-localhost\r\n250 AUTH PLAIN\r\n",
		starttls: "502 5.5.1 command not implemented\r\n",
		done:     make(chan struct{}),
	}
	if offerSTARTTLS {
		r.ehlo = "250-localhost\r\n250-STARTTLS\r\n250 AUTH PLAIN\r\n"
		r.starttls = "454 4.7.0 TLS not available\r\n"
	}

	go r.serve()
	t.Cleanup(func() {
		ln.Close()
		<-r.done
	})
	return r
}

func (r *relay) serve() {
	defer close(r.done)

	conn, err := r.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	fmt.Fprint(conn, "220 localhost ESMTP\r\n")

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		r.mu.Lock()
		r.cmds = append(r.cmds, line)
		r.mu.Unlock()

		verb := ""
		if fields := strings.Fields(line); len(fields) > 0 {
			verb = strings.ToUpper(fields[0])
		}

		switch verb {
		case "EHLO":
			fmt.Fprint(conn, r.ehlo)
		case "HELO":
			fmt.Fprint(conn, "250 localhost\r\n")
		case "STARTTLS":
			fmt.Fprint(conn, r.starttls)
		case "QUIT":
			fmt.Fprint(conn, "221 2.0.0 bye\r\n")
			return
		default:
			fmt.Fprint(conn, "502 5.5.1 command not implemented\r\n")
		}
	}
}

func (r *relay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *relay) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cmds...)
}

func TestSMTPNotifier_RequiresSTARTTLS(t *testing.T) {
	tests := []struct {
		name          string
		offerSTARTTLS bool
		wantSTARTTLS  bool
	}{
		{name: "relay without STARTTLS", offerSTARTTLS: false, wantSTARTTLS: false},
		{name: "relay whose STARTTLS fails", offerSTARTTLS: true, wantSTARTTLS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startRelay(t, tt.offerSTARTTLS)

			cfg := testSMTPConfig()
			cfg.Host = "127.0.0.1"
			cfg.Port = srv.port()

			n, err := NewSMTPNotifier(cfg)
			if err != nil {
				t.Fatalf("NewSMTPNotifier() error = %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := n.Notify(ctx, []game.Matchup{"Lakers v Celtics"}); err == nil {
				t.Fatal("Notify() error = nil, want failure without an encrypted session")
			}

			cmds := srv.commands()
			if len(cmds) == 0 || !strings.HasPrefix(strings.ToUpper(cmds[0]), "EHLO") {
				t.Fatalf("commands = %v, want the session to start with EHLO", cmds)
			}

			sawSTARTTLS := false
			for _, cmd := range cmds {
				upper := strings.ToUpper(cmd)
				if strings.HasPrefix(upper, "AUTH") || strings.HasPrefix(upper, "MAIL") ||
					strings.HasPrefix(upper, "RCPT") || strings.HasPrefix(upper, "DATA") {
					t.Errorf("credentials or mail sent over plaintext: %q (all: %v)", cmd, cmds)
				}
				if upper == "STARTTLS" {
					sawSTARTTLS = true
				}
			}
			if sawSTARTTLS != tt.wantSTARTTLS {
				t.Errorf("STARTTLS sent = %v, want %v (commands %v)", sawSTARTTLS, tt.wantSTARTTLS, cmds)
			}
		})
	}
}
