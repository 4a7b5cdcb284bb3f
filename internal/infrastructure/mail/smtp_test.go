package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/acme/catalog-system/internal/core/ports"
)

// fakeSMTP accepts a single session and records the DATA payload.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	cmds []string
	data string
	done chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	reply("220 localhost ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		f.mu.Lock()
		f.cmds = append(f.cmds, cmd)
		f.mu.Unlock()

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250 OK")
		case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
			reply("250 OK")
		case cmd == "DATA":
			reply("354 go ahead")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			f.mu.Lock()
			f.data = sb.String()
			f.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestSMTPSender_Send(t *testing.T) {
	srv := startFakeSMTP(t)
	addr := srv.ln.Addr().(*net.TCPAddr)

	sender := NewSMTPSender(Config{Host: "127.0.0.1", Port: addr.Port, Timeout: 2 * time.Second})
	err := sender.Send(context.Background(), ports.Mail{
		From:    `"Joe Doe" <joe.doe@acme.com>`,
		To:      `"Foo Bar" <foo.bar@acme.com>`,
		Subject: "New book 1",
		Body:    "<strong>book</strong>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case <-srv.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not finish")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !contains(srv.cmds, "MAIL FROM:<joe.doe@acme.com>") {
		t.Fatalf("unexpected commands: %v", srv.cmds)
	}
	if !contains(srv.cmds, "RCPT TO:<foo.bar@acme.com>") {
		t.Fatalf("unexpected commands: %v", srv.cmds)
	}
	if !strings.Contains(srv.data, "Subject: New book 1") || !strings.Contains(srv.data, "<strong>book</strong>") {
		t.Fatalf("unexpected message: %q", srv.data)
	}
}

func TestSMTPSender_InvalidAddress(t *testing.T) {
	sender := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1})
	if err := sender.Send(context.Background(), ports.Mail{From: "not an address", To: "a@b.c"}); err == nil {
		t.Fatalf("expected error for invalid from address")
	}
}

func TestSMTPSender_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	sender := NewSMTPSender(Config{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	if err := sender.Send(context.Background(), ports.Mail{From: "a@acme.com", To: "b@acme.com"}); err == nil {
		t.Fatalf("expected dial error")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
